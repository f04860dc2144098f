// Package agent drives the model-calling loop for one research query and
// feeds the resulting delta stream through the event transformer.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/KamdynS/scholarstream/llm"
	"github.com/KamdynS/scholarstream/stream"
	"github.com/KamdynS/scholarstream/tools"
	"github.com/google/uuid"
)

// DefaultSystemPrompt instructs the model to search before analyzing.
const DefaultSystemPrompt = "You are a research assistant. Use the arxiv_search tool to find papers " +
	"on the user's topic, then analyze the results: summarize the key papers, common themes, and open problems. " +
	"The tool output may be an error payload; if so, say that the search failed and analyze from general knowledge."

// Config controls agent execution.
type Config struct {
	SystemPrompt  string
	MaxIterations int
	ModelOverride string
}

// ResearchAgent runs one streaming query end to end: model passes, tool
// execution between passes, and event emission through a per-request
// transformer.
type ResearchAgent struct {
	Model  llm.Client
	Config Config
	Tools  tools.Registry
}

// NewResearchAgent constructs a ResearchAgent.
func NewResearchAgent(model llm.Client, cfg Config, reg tools.Registry) *ResearchAgent {
	return &ResearchAgent{Model: model, Config: cfg, Tools: reg}
}

// Run processes a single query and emits the canonical event sequence to
// sink. Upstream failures are emitted in-band as error events; the returned
// error is non-nil only for sink (transport) failures or context cancellation.
func (a *ResearchAgent) Run(ctx context.Context, query string, maxResults int, sink stream.Sink) error {
	cfg := a.Config
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 4
	}

	tr := stream.NewTransformer(a.Model.Model(), sink)
	msgs := []llm.Message{{
		Role:    "user",
		Content: fmt.Sprintf("Research topic: %s\nSearch arXiv with max_results=%d, then analyze the findings.", query, maxResults),
	}}
	toolDefs := tools.FromRegistry(a.Tools)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if iter > 0 {
			if err := tr.Consume(llm.Delta{Type: llm.DeltaTypeStepStart}); err != nil {
				return err
			}
		}
		req := &llm.ChatRequest{
			Messages:     msgs,
			Tools:        toolDefs,
			Model:        cfg.ModelOverride,
			SystemPrompt: cfg.SystemPrompt,
		}
		calls, text, err := a.runPass(ctx, req, tr)
		if err != nil {
			return err
		}
		if tr.Done() {
			return nil
		}
		if text != "" {
			msgs = append(msgs, llm.Message{Role: "assistant", Content: text})
		}
		// Final pass: no tool calls left, so the model's finish is terminal.
		if len(calls) == 0 || iter == cfg.MaxIterations-1 {
			return tr.Consume(llm.Delta{Type: llm.DeltaTypeFinish})
		}
		for _, call := range calls {
			result, execErr := a.Tools.Execute(ctx, call.Name, call.Arguments)
			if execErr != nil {
				return tr.Consume(llm.Delta{Type: llm.DeltaTypeToolError, Err: execErr})
			}
			res := call
			res.Output = result
			if err := tr.Consume(llm.Delta{Type: llm.DeltaTypeToolResult, ToolCall: &res}); err != nil {
				return err
			}
			msgs = append(msgs, llm.Message{
				Role:    "tool",
				Content: fmt.Sprintf("%s result (may contain an error notice): %s", call.Name, result),
			})
		}
	}
	return nil
}

// runPass consumes one provider stream, forwarding deltas through the
// transformer and collecting tool calls and assistant text. The provider's
// own finish marks the end of the pass, not of the request; the caller
// decides whether it is terminal.
func (a *ResearchAgent) runPass(ctx context.Context, req *llm.ChatRequest, tr *stream.Transformer) ([]llm.ToolCallData, string, error) {
	s, err := a.Model.ChatStream(ctx, req)
	if err != nil {
		return nil, "", tr.Fail(err)
	}
	defer func() { _ = s.Close() }()

	var calls []llm.ToolCallData
	var text strings.Builder
	for {
		d, derr := s.Recv(ctx)
		if derr != nil {
			if derr == llm.ErrStreamClosed {
				return calls, text.String(), nil
			}
			if ctx.Err() != nil {
				// Client gone: stop producing, release the loop.
				return nil, "", ctx.Err()
			}
			return nil, "", tr.Fail(derr)
		}
		switch d.Type {
		case llm.DeltaTypeFinish:
			return calls, text.String(), nil
		case llm.DeltaTypeToolCall:
			if d.ToolCall == nil {
				continue
			}
			if d.ToolCall.ID == "" {
				d.ToolCall.ID = uuid.NewString()
			}
			calls = append(calls, *d.ToolCall)
			if err := tr.Consume(d); err != nil {
				return nil, "", err
			}
		case llm.DeltaTypeText:
			text.WriteString(d.Text)
			if err := tr.Consume(d); err != nil {
				return nil, "", err
			}
		case "":
			// Providers yield zero deltas for events with nothing to surface.
		default:
			if err := tr.Consume(d); err != nil {
				return nil, "", err
			}
			if tr.Done() {
				return calls, text.String(), nil
			}
		}
	}
}
