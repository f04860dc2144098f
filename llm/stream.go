package llm

import (
	"context"
	"errors"
)

// DeltaType identifies the kind of streaming event emitted by a provider or
// synthesized by the agent loop driving it.
type DeltaType string

const (
	DeltaTypeStreamStart DeltaType = "stream_start"
	DeltaTypeStepStart   DeltaType = "step_start"
	DeltaTypeTextStart   DeltaType = "text_start"
	DeltaTypeText        DeltaType = "text"
	DeltaTypeToolCall    DeltaType = "tool_call"
	DeltaTypeToolResult  DeltaType = "tool_result"
	DeltaTypeFinish      DeltaType = "finish"
	DeltaTypeToolError   DeltaType = "tool_error"
	DeltaTypeError       DeltaType = "error"
)

// ToolCallData carries a complete tool invocation assembled from provider
// chunks: call identifier, tool name, and the raw JSON argument string.
// Output is populated on tool_result deltas only.
type ToolCallData struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

// Delta is a provider-neutral streaming event. Consumers must ignore kinds
// they do not recognize.
type Delta struct {
	Type     DeltaType     `json:"type"`
	Text     string        `json:"text,omitempty"`
	ToolCall *ToolCallData `json:"tool_call,omitempty"`
	Err      error         `json:"-"`
	// Provider/model are optional hints for observability
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Stream provides a pull-based API over provider event streams.
// Implementations return (Delta{Type: DeltaTypeFinish}, nil) once the
// provider stream ends normally.
type Stream interface {
	Recv(ctx context.Context) (Delta, error)
	Close() error
}

// ErrStreamClosed indicates Recv was called after Close or a terminal event.
var ErrStreamClosed = errors.New("stream closed")
