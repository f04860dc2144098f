package openai

import (
	"context"
	"net/http"
	"sort"
	"time"

	base "github.com/KamdynS/scholarstream/llm"
	"github.com/KamdynS/scholarstream/observability"
	oa "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// Client implements scholarstream/llm.Client for the OpenAI official SDK.
type Client struct {
	client oa.Client
	cfg    Config
}

// Config configures the OpenAI client.
type Config struct {
	APIKey       string
	Model        string
	BaseURL      string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	Organization string
	Hooks        *observability.Hooks
}

// NewClient creates an OpenAI client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	opts := []option.RequestOption{option.WithHTTPClient(httpClient)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Organization != "" {
		opts = append(opts, option.WithOrganization(cfg.Organization))
	}
	c := oa.NewClient(opts...)
	return &Client{client: c, cfg: cfg}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

// ChatStream issues a streaming chat-completion request and adapts the chunk
// stream onto the provider-neutral delta union.
func (c *Client) ChatStream(ctx context.Context, req *base.ChatRequest) (base.Stream, error) {
	messages := toOAMessages(req)
	params := oa.ChatCompletionNewParams{Messages: messages}
	if m := pickModel(req, c.cfg.Model); m != "" {
		params.Model = shared.ChatModel(m)
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = oa.Int(int64(c.cfg.MaxTokens))
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = oa.Float(c.cfg.Temperature)
	}
	if len(req.Tools) > 0 {
		params.Tools = toOATools(req.Tools)
	}
	if c.cfg.Hooks != nil {
		c.cfg.Hooks.SafeLLMRequest(ctx, "openai", string(params.Model), map[string]any{"operation": "chat_stream"})
	}
	s := c.client.Chat.Completions.NewStreaming(ctx, params)
	return &oaStreamWrapper{inner: s, provider: "openai", model: string(params.Model)}, nil
}

// oaStreamCore matches the subset of the OpenAI stream API we use.
type oaStreamCore interface {
	Next() bool
	Current() oa.ChatCompletionChunk
	Err() error
	Close() error
}

type oaStreamWrapper struct {
	inner    oaStreamCore
	provider string
	model    string
	closed   bool
	started  bool
	// tool call fragments accumulated across chunks, keyed by choice index
	tools   map[int64]*base.ToolCallData
	pending []base.Delta
}

func (w *oaStreamWrapper) Recv(ctx context.Context) (base.Delta, error) {
	if w.closed {
		return base.Delta{}, base.ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		w.closed = true
		return base.Delta{}, err
	}
	if len(w.pending) > 0 {
		d := w.pending[0]
		w.pending = w.pending[1:]
		return d, nil
	}
	if !w.inner.Next() {
		w.closed = true
		if err := w.inner.Err(); err != nil {
			return base.Delta{}, err
		}
		w.flushTools()
		if len(w.pending) > 0 {
			w.closed = false
			d := w.pending[0]
			w.pending = w.pending[1:]
			return d, nil
		}
		return base.Delta{Type: base.DeltaTypeFinish, Provider: w.provider, Model: w.model}, nil
	}
	ev := w.inner.Current()
	if !w.started {
		w.started = true
		w.consume(ev)
		return base.Delta{Type: base.DeltaTypeStreamStart, Provider: w.provider, Model: w.model}, nil
	}
	w.consume(ev)
	if len(w.pending) > 0 {
		d := w.pending[0]
		w.pending = w.pending[1:]
		return d, nil
	}
	// No surfaceable content in this chunk; callers skip zero deltas.
	return base.Delta{}, nil
}

// consume translates one chunk into zero or more pending deltas.
func (w *oaStreamWrapper) consume(ev oa.ChatCompletionChunk) {
	for _, ch := range ev.Choices {
		if ch.Delta.Content != "" {
			w.pending = append(w.pending, base.Delta{Type: base.DeltaTypeText, Text: ch.Delta.Content, Provider: w.provider, Model: w.model})
		}
		for _, tc := range ch.Delta.ToolCalls {
			if w.tools == nil {
				w.tools = make(map[int64]*base.ToolCallData)
			}
			cur, ok := w.tools[tc.Index]
			if !ok {
				cur = &base.ToolCallData{}
				w.tools[tc.Index] = cur
			}
			if tc.ID != "" {
				cur.ID = tc.ID
			}
			if tc.Function.Name != "" {
				cur.Name = tc.Function.Name
			}
			cur.Arguments += tc.Function.Arguments
		}
		if ch.FinishReason != "" {
			w.flushTools()
		}
	}
}

// flushTools emits accumulated tool calls as complete tool_call deltas.
func (w *oaStreamWrapper) flushTools() {
	if len(w.tools) == 0 {
		return
	}
	idx := make([]int64, 0, len(w.tools))
	for i := range w.tools {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })
	for _, i := range idx {
		tc := *w.tools[i]
		if tc.Arguments == "" {
			tc.Arguments = "{}"
		}
		w.pending = append(w.pending, base.Delta{Type: base.DeltaTypeToolCall, ToolCall: &tc, Provider: w.provider, Model: w.model})
	}
	w.tools = nil
}

func (w *oaStreamWrapper) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.inner.Close()
}

func toOAMessages(req *base.ChatRequest) []oa.ChatCompletionMessageParamUnion {
	msgs := make([]oa.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, oa.ChatCompletionMessageParamUnion{OfSystem: &oa.ChatCompletionSystemMessageParam{Content: oa.ChatCompletionSystemMessageParamContentUnion{OfString: oa.String(req.SystemPrompt)}}})
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, oa.ChatCompletionMessageParamUnion{OfAssistant: &oa.ChatCompletionAssistantMessageParam{Content: oa.ChatCompletionAssistantMessageParamContentUnion{OfString: oa.String(m.Content)}}})
		default:
			msgs = append(msgs, oa.ChatCompletionMessageParamUnion{OfUser: &oa.ChatCompletionUserMessageParam{Content: oa.ChatCompletionUserMessageParamContentUnion{OfString: oa.String(m.Content)}}})
		}
	}
	return msgs
}

func pickModel(req *base.ChatRequest, fallback string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	return fallback
}
