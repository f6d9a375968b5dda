package query

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/utils/safe"
)

// Client talks to the analytical query service over HTTP JSON
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.QueryClient = &Client{}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Query(ctx context.Context, request string) (*interfaces.QueryResult, error) {
	var result interfaces.QueryResult
	if err := c.post(ctx, "/v1/query", map[string]any{"request": request}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Search(ctx context.Context, query, searchContext string) ([]interfaces.SearchResult, error) {
	payload := map[string]any{"query": query}
	if searchContext != "" {
		payload["context"] = searchContext
	}

	var result struct {
		Results []interfaces.SearchResult `json:"results"`
	}
	if err := c.post(ctx, "/v1/search", payload, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to encode query payload", goerr.V("path", path))
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to build query request", goerr.V("url", url))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(types.ErrCapability, "query service unreachable",
			goerr.V("url", url), goerr.V("cause", err))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.Wrap(types.ErrCapability, "query service returned an error",
			goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode query response", goerr.V("url", url))
	}

	return nil
}
