package llm

import (
	"context"
	"errors"
	"time"
)

// RoutePolicy decides which client/model to use for a given request.
type RoutePolicy interface {
	// Select returns the target client and optional model override.
	Select(req *ChatRequest) (Client, string, error)
}

// StaticPolicy routes by req.Model if present, otherwise uses Default.
type StaticPolicy struct {
	Default Client
	ByModel map[string]Client
}

// Select picks a client based on explicit model or defaults.
func (p StaticPolicy) Select(req *ChatRequest) (Client, string, error) {
	if req != nil && req.Model != "" {
		if c, ok := p.ByModel[req.Model]; ok && c != nil {
			return c, req.Model, nil
		}
		if p.Default != nil {
			return p.Default, req.Model, nil
		}
		return nil, "", errors.New("no default client configured")
	}
	if p.Default == nil {
		return nil, "", errors.New("no default client configured")
	}
	return p.Default, "", nil
}

// RouterClient implements Client and delegates via RoutePolicy.
type RouterClient struct {
	policy RoutePolicy
	cfg    RouterConfig
}

// RouterConfig controls router behavior.
type RouterConfig struct {
	// Timeout applies when the incoming context has no deadline.
	Timeout time.Duration
}

// NewRouterClient creates a router client with the given policy.
func NewRouterClient(policy RoutePolicy) *RouterClient {
	return &RouterClient{policy: policy}
}

// WithConfig sets optional router config.
func (r *RouterClient) WithConfig(cfg RouterConfig) *RouterClient {
	r.cfg = cfg
	return r
}

// ChatStream delegates to the selected client and returns its delta stream.
func (r *RouterClient) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	c, modelOverride, err := r.policy.Select(req)
	if err != nil {
		return nil, err
	}
	if modelOverride != "" {
		// Shallow clone to avoid mutating caller's struct
		clone := *req
		clone.Model = modelOverride
		req = &clone
	}
	return c.ChatStream(r.ensureTimeout(ctx), req)
}

func (r *RouterClient) ensureTimeout(ctx context.Context) context.Context {
	if _, ok := ctx.Deadline(); ok {
		return ctx
	}
	if r.cfg.Timeout <= 0 {
		return ctx
	}
	c, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	go func() { <-c.Done(); cancel() }()
	return c
}

// Model returns an identifier for this client.
func (r *RouterClient) Model() string {
	if p, ok := r.policy.(StaticPolicy); ok && p.Default != nil {
		return p.Default.Model()
	}
	return "router"
}
