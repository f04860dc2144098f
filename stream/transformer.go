package stream

import (
	"encoding/json"
	"fmt"

	"github.com/KamdynS/scholarstream/llm"
)

// Transformer folds the heterogeneous model delta stream into the canonical
// event sequence, one request per instance. It holds O(1) state: whether the
// model-start event has been emitted and whether a terminal event closed the
// sequence. It never reorders and never fails on upstream input; upstream
// failures become in-band error events.
type Transformer struct {
	model      string
	emit       Sink
	llmStarted bool
	done       bool
}

// NewTransformer creates a transformer for a single request, labeling the
// llm_start event with model and forwarding every produced event to emit.
func NewTransformer(model string, emit Sink) *Transformer {
	return &Transformer{model: model, emit: emit}
}

// Done reports whether a terminal event has been emitted.
func (t *Transformer) Done() bool { return t.done }

// Consume applies one upstream delta in arrival order. Unknown delta kinds
// are dropped. The returned error is a sink (transport) failure only.
func (t *Transformer) Consume(d llm.Delta) error {
	if t.done {
		return nil
	}
	// Lifecycle detection runs before kind-specific handling so that an
	// llm_start triggered by this same delta precedes the event built from it.
	switch d.Type {
	case llm.DeltaTypeStreamStart, llm.DeltaTypeStepStart, llm.DeltaTypeTextStart,
		llm.DeltaTypeText, llm.DeltaTypeToolCall:
		if err := t.markStarted(d); err != nil {
			return err
		}
	}

	switch d.Type {
	case llm.DeltaTypeText:
		return t.emit(Event{Type: TypeToken, Content: d.Text})
	case llm.DeltaTypeToolCall:
		if d.ToolCall == nil {
			return nil
		}
		return t.emit(Event{
			Type:       TypeToolCall,
			Tool:       d.ToolCall.Name,
			Message:    fmt.Sprintf("Calling %s...", d.ToolCall.Name),
			ToolCallID: d.ToolCall.ID,
			Input:      rawInput(d.ToolCall.Arguments),
		})
	case llm.DeltaTypeToolResult:
		if d.ToolCall == nil {
			return nil
		}
		return t.emit(Event{
			Type:       TypeToolResult,
			Tool:       d.ToolCall.Name,
			Message:    Summarize(d.ToolCall.Name, d.ToolCall.Output),
			ToolCallID: d.ToolCall.ID,
			Input:      rawInput(d.ToolCall.Arguments),
			Output:     d.ToolCall.Output,
		})
	case llm.DeltaTypeFinish:
		t.done = true
		return t.emit(Event{Type: TypeComplete, Message: "Analysis complete"})
	case llm.DeltaTypeToolError:
		t.done = true
		return t.emit(Event{Type: TypeError, Message: "Tool error: " + deltaErr(d)})
	case llm.DeltaTypeError:
		t.done = true
		return t.emit(Event{Type: TypeError, Message: "Error: " + deltaErr(d)})
	}
	return nil
}

// Fail closes the sequence with a generic error event. It is a no-op once a
// terminal event has been emitted.
func (t *Transformer) Fail(err error) error {
	return t.Consume(llm.Delta{Type: llm.DeltaTypeError, Err: err})
}

func (t *Transformer) markStarted(d llm.Delta) error {
	if t.llmStarted {
		return nil
	}
	t.llmStarted = true
	model := d.Model
	if model == "" {
		model = t.model
	}
	return t.emit(Event{Type: TypeLLMStart, Model: model, Message: "Model analyzing papers..."})
}

// rawInput passes model-supplied arguments through as raw JSON when they
// parse, so the wire record stays compact and absent input stays absent.
func rawInput(args string) json.RawMessage {
	if args == "" || !json.Valid([]byte(args)) {
		return nil
	}
	return json.RawMessage(args)
}

func deltaErr(d llm.Delta) string {
	if d.Err != nil {
		return d.Err.Error()
	}
	return d.Text
}
