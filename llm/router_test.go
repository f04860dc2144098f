package llm

import (
	"context"
	"testing"
)

type recordingClient struct {
	name string
	got  *ChatRequest
}

func (c *recordingClient) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	c.got = req
	return emptyStream{}, nil
}

func (c *recordingClient) Model() string { return c.name }

type emptyStream struct{}

func (emptyStream) Recv(ctx context.Context) (Delta, error) { return Delta{}, ErrStreamClosed }
func (emptyStream) Close() error                            { return nil }

func TestStaticPolicy_RoutesByModel(t *testing.T) {
	def := &recordingClient{name: "default-model"}
	alt := &recordingClient{name: "alt-model"}
	policy := StaticPolicy{Default: def, ByModel: map[string]Client{"alt-model": alt}}

	c, override, err := policy.Select(&ChatRequest{Model: "alt-model"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if c != Client(alt) || override != "alt-model" {
		t.Fatalf("Select = (%v, %q)", c, override)
	}

	c, override, err = policy.Select(&ChatRequest{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if c != Client(def) || override != "" {
		t.Fatalf("default Select = (%v, %q)", c, override)
	}
}

func TestStaticPolicy_NoDefault(t *testing.T) {
	if _, _, err := (StaticPolicy{}).Select(&ChatRequest{}); err == nil {
		t.Fatalf("expected error with no default client")
	}
}

func TestRouterClient_DoesNotMutateRequest(t *testing.T) {
	def := &recordingClient{name: "default-model"}
	router := NewRouterClient(StaticPolicy{Default: def})

	req := &ChatRequest{Model: "pinned"}
	if _, err := router.ChatStream(context.Background(), req); err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if req.Model != "pinned" {
		t.Fatalf("caller request mutated: %q", req.Model)
	}
	if def.got == nil || def.got.Model != "pinned" {
		t.Fatalf("delegate request = %#v", def.got)
	}
}

func TestRouterClient_ModelReportsDefault(t *testing.T) {
	router := NewRouterClient(StaticPolicy{Default: &recordingClient{name: "default-model"}})
	if router.Model() != "default-model" {
		t.Fatalf("Model = %q", router.Model())
	}
}
