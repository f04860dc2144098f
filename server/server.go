// Package server exposes the research agent over HTTP: one streaming NDJSON
// endpoint and a static examples endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/KamdynS/scholarstream/observability"
	"github.com/KamdynS/scholarstream/stream"
)

// Runner executes one research query, emitting events to the sink.
type Runner interface {
	Run(ctx context.Context, query string, maxResults int, sink stream.Sink) error
}

// Server wraps an agent with HTTP endpoints for streaming research runs.
type Server struct {
	agent  Runner
	config Config
	http   *http.Server
}

// Config for the HTTP server.
type Config struct {
	Port                int
	ReadTimeout         time.Duration
	MaxRequestBodyBytes int64
	// Examples served by GET /api/examples.
	Examples []string
	Hooks    *observability.Hooks
}

var defaultExamples = []string{
	"diffusion models",
	"quantum error correction",
	"retrieval augmented generation",
	"sparse mixture of experts",
}

// New constructs the server.
func New(a Runner, cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.MaxRequestBodyBytes == 0 {
		cfg.MaxRequestBodyBytes = 1 << 20
	}
	if len(cfg.Examples) == 0 {
		cfg.Examples = defaultExamples
	}

	s := &Server{agent: a, config: cfg}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/api/examples", s.examples)
	mux.HandleFunc("/api/research", s.research)

	s.http = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     mux,
		ReadTimeout: cfg.ReadTimeout,
		// No WriteTimeout: responses stream for the lifetime of a run.
	}
	return s
}

// Handler returns the route handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start the HTTP server.
func (s *Server) Start() error {
	log.Printf("[Server] Listening on port %d", s.config.Port)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error { return s.http.Shutdown(ctx) }

// ResearchRequest is the body of POST /api/research.
type ResearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// ExamplesResponse is the body of GET /api/examples.
type ExamplesResponse struct {
	Examples []string `json:"examples"`
}

// ErrorResponse is the JSON error envelope for pre-stream failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) examples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.sendJSON(w, http.StatusOK, ExamplesResponse{Examples: s.config.Examples})
}

func (s *Server) research(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req ResearchRequest
	if err := dec.Decode(&req); err != nil {
		s.writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Query == "" {
		s.writeErr(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 5
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)
	relay := NewRelay(w, flusher)

	s.config.Hooks.SafeLog(r.Context(), "info", "research run started",
		map[string]any{"query": req.Query, "max_results": req.MaxResults})
	if err := s.agent.Run(r.Context(), req.Query, req.MaxResults, relay.Send); err != nil {
		// The connection is already streaming; nothing more can be sent.
		log.Printf("[Server] research run aborted: %v", err)
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeErr(w http.ResponseWriter, status int, msg string) {
	s.sendJSON(w, status, ErrorResponse{Error: msg})
}
