package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultArxivBaseURL is the public arXiv query API endpoint.
const DefaultArxivBaseURL = "http://export.arxiv.org/api/query"

const defaultMaxResults = 5

// Cache is an optional read-through store for raw search responses. Lookups
// and writes are best-effort; errors degrade to a cache miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ArxivSearchTool queries the arXiv literature API. One GET per call, no
// retries, no pagination. A non-success status degrades to a placeholder
// document so the model can mention the failure instead of the run aborting.
type ArxivSearchTool struct {
	client  *http.Client
	baseURL string
	cache   Cache
}

// ArxivOption customizes the tool.
type ArxivOption func(*ArxivSearchTool)

// WithArxivBaseURL overrides the query endpoint.
func WithArxivBaseURL(u string) ArxivOption {
	return func(t *ArxivSearchTool) { t.baseURL = u }
}

// WithArxivCache attaches a response cache.
func WithArxivCache(c Cache) ArxivOption {
	return func(t *ArxivSearchTool) { t.cache = c }
}

// NewArxivSearchTool creates the tool with an optional timeout.
func NewArxivSearchTool(timeout time.Duration, opts ...ArxivOption) *ArxivSearchTool {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	t := &ArxivSearchTool{
		client:  &http.Client{Timeout: timeout},
		baseURL: DefaultArxivBaseURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *ArxivSearchTool) Name() string { return "arxiv_search" }

func (t *ArxivSearchTool) Description() string {
	return "Search arXiv for research papers on a topic. Returns the raw Atom feed of matching papers."
}

func (t *ArxivSearchTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Research topic to search for",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of papers to return (default 5)",
			},
		},
		"required": []string{"query"},
	}
}

// Execute runs one search. Input is the model-supplied JSON argument string.
func (t *ArxivSearchTool) Execute(ctx context.Context, input string) (string, error) {
	query := gjson.Get(input, "query").String()
	if query == "" {
		return "", fmt.Errorf("arxiv_search: missing query in input %q", input)
	}
	maxResults := int(gjson.Get(input, "max_results").Int())
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return t.Search(ctx, query, maxResults)
}

// Search issues the fixed-template query and returns the raw response body.
func (t *ArxivSearchTool) Search(ctx context.Context, query string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	key := fmt.Sprintf("%s|%d", query, maxResults)
	if t.cache != nil {
		if v, ok, err := t.cache.Get(ctx, key); err == nil && ok {
			return v, nil
		}
	}

	u := fmt.Sprintf("%s?search_query=all:%s&max_results=%d&sortBy=relevance",
		t.baseURL, url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Degraded, not failed: the caller hands this to the model as-is.
		return fmt.Sprintf("arXiv API error: HTTP status %d", resp.StatusCode), nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	body := string(b)
	if t.cache != nil {
		_ = t.cache.Set(ctx, key, body)
	}
	return body, nil
}
