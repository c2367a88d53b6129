// Package graphql provides a GraphQL client for the Shopify Admin API.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nebulab/shopify-toolkit/internal/metrics"
)

// DefaultTimeout bounds a single HTTP round trip. Bulk submissions are
// small requests; the long-running work happens server side.
const DefaultTimeout = 30 * time.Second

// Client is a GraphQL client for the Shopify Admin API.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	collector   *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCollector records request timings into the given collector.
func WithCollector(col *metrics.Collector) Option {
	return func(c *Client) { c.collector = col }
}

// New creates a new GraphQL client for the given Admin API endpoint.
// The access token is sent as the X-Shopify-Access-Token header.
func New(endpoint, accessToken string, opts ...Option) *Client {
	c := &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request is the request payload for GraphQL operations.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// response is the response payload from GraphQL operations.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors,omitempty"`
}

// Error represents a top-level GraphQL error.
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

// Errors is the full top-level error list of a response.
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Execute sends a GraphQL query/mutation and unmarshals the data payload
// into result. Transport failures, non-200 responses, and top-level errors
// are returned as errors with the original message preserved.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, result any) error {
	start := time.Now()
	defer func() {
		if c.collector != nil {
			c.collector.RecordTiming(metrics.CallExecute, time.Since(start))
		}
	}()

	reqBody, err := json.Marshal(request{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error: %s - %s", resp.Status, string(body))
	}

	var gqlResp response
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return Errors(gqlResp.Errors)
	}

	if result != nil && len(gqlResp.Data) > 0 {
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}

	return nil
}
