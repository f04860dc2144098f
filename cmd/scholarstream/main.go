// Command scholarstream runs the research-analysis demo server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	rediscache "github.com/KamdynS/scholarstream/adapters/redis"
	"github.com/KamdynS/scholarstream/agent"
	"github.com/KamdynS/scholarstream/llm"
	"github.com/KamdynS/scholarstream/llm/anthropic"
	"github.com/KamdynS/scholarstream/llm/openai"
	"github.com/KamdynS/scholarstream/observability"
	"github.com/KamdynS/scholarstream/server"
	"github.com/KamdynS/scholarstream/tools"
)

func main() {
	hooks := &observability.Hooks{
		Logf: func(_ context.Context, level, msg string, fields map[string]any) {
			log.Printf("[%s] %s %v", level, msg, fields)
		},
		OnLLMRequest: func(_ context.Context, provider, model string, _ map[string]any) {
			log.Printf("[LLM] request provider=%s model=%s", provider, model)
		},
	}

	model, err := buildModel(hooks)
	if err != nil {
		log.Fatalf("model setup: %v", err)
	}

	arxivOpts := []tools.ArxivOption{}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache, err := rediscache.New(rediscache.Config{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
		if err != nil {
			log.Fatalf("redis cache: %v", err)
		}
		defer cache.Close()
		arxivOpts = append(arxivOpts, tools.WithArxivCache(cache))
		log.Printf("[Main] arXiv response cache enabled at %s", addr)
	}

	reg := tools.NewRegistry()
	if err := reg.Register(tools.NewArxivSearchTool(0, arxivOpts...)); err != nil {
		log.Fatalf("register arxiv tool: %v", err)
	}

	ag := agent.NewResearchAgent(model, agent.Config{}, reg)

	srv := server.New(ag, server.Config{
		Port:  envInt("PORT", 8080),
		Hooks: hooks,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("[Main] shutdown: %v", err)
	}
}

// buildModel wires the configured providers behind a router so requests can
// override the model per provider.
func buildModel(hooks *observability.Hooks) (llm.Client, error) {
	policy := llm.StaticPolicy{ByModel: map[string]llm.Client{}}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c, err := anthropic.NewClient(anthropic.Config{
			APIKey: key,
			Model:  os.Getenv("ANTHROPIC_MODEL"),
			Hooks:  hooks,
		})
		if err != nil {
			return nil, err
		}
		policy.Default = c
		policy.ByModel[c.Model()] = c
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c, err := openai.NewClient(openai.Config{
			APIKey: key,
			Model:  os.Getenv("OPENAI_MODEL"),
			Hooks:  hooks,
		})
		if err != nil {
			return nil, err
		}
		if policy.Default == nil {
			policy.Default = c
		}
		policy.ByModel[c.Model()] = c
	}
	if policy.Default == nil {
		log.Fatalf("set ANTHROPIC_API_KEY or OPENAI_API_KEY")
	}
	return llm.NewRouterClient(policy), nil
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
