package stream

import (
	"errors"
	"strings"
	"testing"

	"github.com/KamdynS/scholarstream/llm"
)

func collectSink(out *[]Event) Sink {
	return func(ev Event) error {
		*out = append(*out, ev)
		return nil
	}
}

func TestTransformer_LLMStartIsIdempotent(t *testing.T) {
	var got []Event
	tr := NewTransformer("test-model", collectSink(&got))

	deltas := []llm.Delta{
		{Type: llm.DeltaTypeStreamStart},
		{Type: llm.DeltaTypeStepStart},
		{Type: llm.DeltaTypeTextStart},
		{Type: llm.DeltaTypeText, Text: "a"},
		{Type: llm.DeltaTypeText, Text: "b"},
		{Type: llm.DeltaTypeFinish},
	}
	for _, d := range deltas {
		if err := tr.Consume(d); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}

	starts := 0
	for i, ev := range got {
		if ev.Type == TypeLLMStart {
			starts++
			if i != 0 {
				t.Fatalf("llm_start at position %d, want 0", i)
			}
			if ev.Model != "test-model" {
				t.Fatalf("llm_start model = %q", ev.Model)
			}
		}
	}
	if starts != 1 {
		t.Fatalf("got %d llm_start events, want 1", starts)
	}
}

func TestTransformer_TokenConcatenation(t *testing.T) {
	var got []Event
	tr := NewTransformer("m", collectSink(&got))

	fragments := []string{"The ", "quick", "", " brown", " fox"}
	for _, f := range fragments {
		if err := tr.Consume(llm.Delta{Type: llm.DeltaTypeText, Text: f}); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}
	if err := tr.Consume(llm.Delta{Type: llm.DeltaTypeFinish}); err != nil {
		t.Fatalf("Consume finish: %v", err)
	}

	var acc strings.Builder
	for _, ev := range got {
		if ev.Type == TypeToken {
			acc.WriteString(ev.Content)
		}
	}
	if acc.String() != strings.Join(fragments, "") {
		t.Fatalf("accumulated %q, want %q", acc.String(), strings.Join(fragments, ""))
	}
}

func TestTransformer_ToolCallOrderedAfterStart(t *testing.T) {
	var got []Event
	tr := NewTransformer("m", collectSink(&got))

	// A tool call arriving as the very first upstream event must still be
	// preceded by llm_start.
	err := tr.Consume(llm.Delta{Type: llm.DeltaTypeToolCall, ToolCall: &llm.ToolCallData{
		ID: "call_9", Name: "arxiv_search", Arguments: `{"query":"x"}`,
	}})
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Type != TypeLLMStart {
		t.Fatalf("first event = %s, want llm_start", got[0].Type)
	}
	if got[1].Type != TypeToolCall || got[1].Tool != "arxiv_search" || got[1].ToolCallID != "call_9" {
		t.Fatalf("unexpected tool_call event: %#v", got[1])
	}
	if got[1].Message != "Calling arxiv_search..." {
		t.Fatalf("tool_call message = %q", got[1].Message)
	}
	if string(got[1].Input) != `{"query":"x"}` {
		t.Fatalf("tool_call input = %q", got[1].Input)
	}
}

func TestTransformer_TerminalErrorStopsSequence(t *testing.T) {
	var got []Event
	tr := NewTransformer("m", collectSink(&got))

	_ = tr.Consume(llm.Delta{Type: llm.DeltaTypeText, Text: "partial"})
	_ = tr.Consume(llm.Delta{Type: llm.DeltaTypeError, Err: errors.New("provider unavailable")})
	// Upstream keeps emitting after the error; nothing may be forwarded.
	_ = tr.Consume(llm.Delta{Type: llm.DeltaTypeText, Text: "late"})
	_ = tr.Consume(llm.Delta{Type: llm.DeltaTypeFinish})

	if !tr.Done() {
		t.Fatalf("transformer not done after error")
	}
	last := got[len(got)-1]
	if last.Type != TypeError {
		t.Fatalf("last event = %s, want error", last.Type)
	}
	if last.Message != "Error: provider unavailable" {
		t.Fatalf("error message = %q", last.Message)
	}
	terminals := 0
	for _, ev := range got {
		if ev.Terminal() {
			terminals++
		}
	}
	if terminals != 1 {
		t.Fatalf("got %d terminal events, want 1", terminals)
	}
}

func TestTransformer_ToolErrorPrefix(t *testing.T) {
	var got []Event
	tr := NewTransformer("m", collectSink(&got))

	_ = tr.Consume(llm.Delta{Type: llm.DeltaTypeToolError, Err: errors.New("fetch exploded")})
	if len(got) != 1 || got[0].Type != TypeError {
		t.Fatalf("unexpected events: %#v", got)
	}
	if got[0].Message != "Tool error: fetch exploded" {
		t.Fatalf("message = %q", got[0].Message)
	}
}

func TestTransformer_UnknownDeltasDropped(t *testing.T) {
	var got []Event
	tr := NewTransformer("m", collectSink(&got))

	_ = tr.Consume(llm.Delta{Type: "reasoning_delta", Text: "hmm"})
	_ = tr.Consume(llm.Delta{Type: ""})
	if len(got) != 0 {
		t.Fatalf("unknown deltas surfaced events: %#v", got)
	}
}

func TestTransformer_ResearchScenario(t *testing.T) {
	xml := `<feed><title>ArXiv Query Results</title>` +
		`<entry><title>Denoising Diffusion Probabilistic Models</title></entry>` +
		`<entry><title>Score-Based Generative Modeling</title></entry></feed>`

	var got []Event
	tr := NewTransformer("claude-3-5-haiku-latest", collectSink(&got))

	call := &llm.ToolCallData{ID: "call_1", Name: "arxiv_search", Arguments: `{"query":"diffusion models","max_results":2}`}
	res := *call
	res.Output = xml
	deltas := []llm.Delta{
		{Type: llm.DeltaTypeStreamStart},
		{Type: llm.DeltaTypeToolCall, ToolCall: call},
		{Type: llm.DeltaTypeToolResult, ToolCall: &res},
		{Type: llm.DeltaTypeStepStart},
		{Type: llm.DeltaTypeText, Text: "Diffusion models "},
		{Type: llm.DeltaTypeText, Text: "are generative."},
		{Type: llm.DeltaTypeFinish},
	}
	for _, d := range deltas {
		if err := tr.Consume(d); err != nil {
			t.Fatalf("Consume: %v", err)
		}
	}

	wantTypes := []Type{TypeLLMStart, TypeToolCall, TypeToolResult, TypeToken, TypeToken, TypeComplete}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d events %v, want %d", len(got), got, len(wantTypes))
	}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Fatalf("event %d = %s, want %s", i, got[i].Type, want)
		}
	}
	wantMsg := "Found 2 papers. Top: Denoising Diffusion Probabilistic Models • Score-Based Generative Modeling"
	if got[2].Message != wantMsg {
		t.Fatalf("tool_result message = %q, want %q", got[2].Message, wantMsg)
	}
	if got[len(got)-1].Message != "Analysis complete" {
		t.Fatalf("complete message = %q", got[len(got)-1].Message)
	}
}
