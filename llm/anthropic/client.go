package anthropic

import (
	"context"
	"net/http"
	"time"

	base "github.com/KamdynS/scholarstream/llm"
	"github.com/KamdynS/scholarstream/observability"
	anth "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client implements scholarstream/llm.Client for the Anthropic Messages API.
type Client struct {
	client anth.Client
	cfg    Config
}

// Config configures the Anthropic client.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Hooks       *observability.Hooks
}

// NewClient creates an Anthropic client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	c := anth.NewClient(opts...)
	return &Client{client: c, cfg: cfg}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

// ChatStream issues a streaming Messages request and adapts the SDK event
// stream onto the provider-neutral delta union.
func (c *Client) ChatStream(ctx context.Context, req *base.ChatRequest) (base.Stream, error) {
	params := toAnthParams(req, c.cfg)
	if c.cfg.Hooks != nil {
		c.cfg.Hooks.SafeLLMRequest(ctx, "anthropic", string(params.Model), map[string]any{"operation": "chat_stream"})
	}
	s := c.client.Messages.NewStreaming(ctx, params)
	return &anthStreamWrapper{inner: s, model: string(params.Model)}, nil
}

// anthStreamCore matches the subset of the SDK stream API we use.
type anthStreamCore interface {
	Next() bool
	Current() anth.MessageStreamEventUnion
	Err() error
	Close() error
}

type anthStreamWrapper struct {
	inner  anthStreamCore
	model  string
	closed bool
	// pending tool_use block being assembled from input_json_delta chunks
	tool     *base.ToolCallData
	toolArgs string
	started  bool
}

func (w *anthStreamWrapper) Recv(ctx context.Context) (base.Delta, error) {
	if w.closed {
		return base.Delta{}, base.ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		w.closed = true
		return base.Delta{}, err
	}
	if !w.inner.Next() {
		w.closed = true
		if err := w.inner.Err(); err != nil {
			return base.Delta{}, err
		}
		return base.Delta{Type: base.DeltaTypeFinish, Provider: "anthropic", Model: w.model}, nil
	}
	ev := w.inner.Current()
	switch ev.Type {
	case "message_start":
		w.started = true
		return base.Delta{Type: base.DeltaTypeStreamStart, Provider: "anthropic", Model: w.model}, nil
	case "content_block_start":
		switch ev.ContentBlock.Type {
		case "text":
			return base.Delta{Type: base.DeltaTypeTextStart, Provider: "anthropic", Model: w.model}, nil
		case "tool_use":
			w.tool = &base.ToolCallData{ID: ev.ContentBlock.ID, Name: ev.ContentBlock.Name}
			w.toolArgs = ""
		}
	case "content_block_delta":
		switch ev.Delta.Type {
		case "text_delta":
			if ev.Delta.Text != "" {
				return base.Delta{Type: base.DeltaTypeText, Text: ev.Delta.Text, Provider: "anthropic", Model: w.model}, nil
			}
		case "input_json_delta":
			if w.tool != nil {
				w.toolArgs += ev.Delta.PartialJSON
			}
		}
	case "content_block_stop":
		if w.tool != nil {
			tc := *w.tool
			tc.Arguments = w.toolArgs
			if tc.Arguments == "" {
				tc.Arguments = "{}"
			}
			w.tool = nil
			return base.Delta{Type: base.DeltaTypeToolCall, ToolCall: &tc, Provider: "anthropic", Model: w.model}, nil
		}
	case "message_stop":
		w.closed = true
		return base.Delta{Type: base.DeltaTypeFinish, Provider: "anthropic", Model: w.model}, nil
	}
	// Events with nothing to surface yield a zero delta; callers skip those.
	return base.Delta{}, nil
}

func (w *anthStreamWrapper) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.inner.Close()
}

func toAnthParams(req *base.ChatRequest, cfg Config) anth.MessageNewParams {
	msgs := make([]anth.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := anth.MessageParamRoleUser
		if m.Role == "assistant" {
			role = anth.MessageParamRoleAssistant
		}
		msgs = append(msgs, anth.MessageParam{
			Role: role,
			Content: []anth.ContentBlockParamUnion{{
				OfText: &anth.TextBlockParam{Text: m.Content},
			}},
		})
	}
	params := anth.MessageNewParams{
		Messages:  msgs,
		MaxTokens: int64(cfg.MaxTokens),
		Model:     anth.Model(pickModel(req, cfg.Model)),
	}
	if req.SystemPrompt != "" {
		params.System = []anth.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toAnthTools(req.Tools)
	}
	if cfg.Temperature > 0 {
		params.Temperature = anth.Float(cfg.Temperature)
	}
	return params
}

// toAnthTools converts neutral tool definitions into Anthropic tool params.
func toAnthTools(tools []base.Tool) []anth.ToolUnionParam {
	out := make([]anth.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		if t.Type != "function" {
			continue
		}
		tp := &anth.ToolParam{Name: t.Function.Name}
		if t.Function.Description != "" {
			tp.Description = anth.String(t.Function.Description)
		}
		schema := anth.ToolInputSchemaParam{Type: "object"}
		if t.Function.Parameters != nil {
			if props, ok := t.Function.Parameters["properties"]; ok {
				schema.Properties = props
			}
		}
		tp.InputSchema = schema
		out = append(out, anth.ToolUnionParam{OfTool: tp})
	}
	return out
}

func pickModel(req *base.ChatRequest, fallback string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	return fallback
}
