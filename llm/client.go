package llm

import "context"

// Client is the provider-agnostic LLM interface used by ScholarStream agents.
type Client interface {
	// ChatStream issues a chat request and returns a provider-neutral delta
	// stream over the model's incremental output.
	ChatStream(ctx context.Context, req *ChatRequest) (Stream, error)
	Model() string
}

// Message represents a single role/content entry in a chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool defines a callable function made available to the model.
type Tool struct {
	Type     string       `json:"type"` // typically "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a function signature exposed to the model.
type ToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ChatRequest is the normalized chat request sent to providers.
type ChatRequest struct {
	Messages     []Message `json:"messages"`
	Tools        []Tool    `json:"tools,omitempty"`
	Model        string    `json:"model,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
}
