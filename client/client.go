package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client streams research runs from a ScholarStream server into a Reducer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a client for the given server base URL. No timeout is set on
// the underlying client: responses stream for the lifetime of a run, so
// deadlines belong on the caller's context.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type researchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// Research runs one query, feeding raw response chunks into red as they
// arrive. Connection-level failures are recorded via red.Fail and returned;
// in-band error events are the server's concern and arrive through the stream.
func (c *Client) Research(ctx context.Context, query string, maxResults int, red *Reducer) error {
	red.Begin()
	body, err := json.Marshal(researchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/research", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		red.Fail(err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("research request failed: status %d", resp.StatusCode)
		red.Fail(err)
		return err
	}

	buf := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			red.Feed(buf[:n])
		}
		if rerr == io.EOF {
			red.Close()
			return nil
		}
		if rerr != nil {
			red.Fail(rerr)
			return rerr
		}
	}
}

// Examples fetches the static example queries.
func (c *Client) Examples(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/examples", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("examples request failed: status %d", resp.StatusCode)
	}
	var out struct {
		Examples []string `json:"examples"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Examples, nil
}
