// Package stream defines the canonical progress events relayed to clients and
// the single-pass transformation that produces them from a model delta stream.
package stream

import "encoding/json"

// Type tags an Event variant.
type Type string

const (
	TypeToolCall   Type = "tool_call"
	TypeToolResult Type = "tool_result"
	TypeLLMStart   Type = "llm_start"
	TypeToken      Type = "token"
	TypeComplete   Type = "complete"
	TypeError      Type = "error"
)

// Event is one typed, ordered unit of progress information sent from server
// to client. Optional fields are omitted on the wire when absent.
type Event struct {
	Type       Type            `json:"type"`
	Tool       string          `json:"tool,omitempty"`
	Message    string          `json:"message,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     string          `json:"output,omitempty"`
	Model      string          `json:"model,omitempty"`
	Content    string          `json:"content,omitempty"`
}

// Terminal reports whether no further events may follow this one.
func (e Event) Terminal() bool {
	return e.Type == TypeComplete || e.Type == TypeError
}

// Sink receives events in emission order. A non-nil error aborts production.
type Sink func(Event) error
