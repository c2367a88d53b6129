package bulk

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nebulab/shopify-toolkit/internal/metrics"
)

// Executor sends a GraphQL document with variables and unmarshals the data
// payload into result. *graphql.Client satisfies this.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any, result any) error
}

// Client drives the bulk operation lifecycle against the Shopify Admin API.
// All methods are synchronous, blocking calls; the client holds no mutable
// state across calls.
type Client struct {
	exec       Executor
	httpClient *http.Client
	logger     *slog.Logger
	collector  *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for lifecycle events and parse
// diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the HTTP client used for staged uploads and
// result downloads (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCollector records upload and download timings into the given
// collector.
func WithCollector(col *metrics.Collector) Option {
	return func(c *Client) { c.collector = col }
}

// NewClient creates a bulk operation client on top of a GraphQL executor.
func NewClient(exec Executor, opts ...Option) *Client {
	c := &Client{
		exec:       exec,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) recordTiming(call string, start time.Time) {
	if c.collector != nil {
		c.collector.RecordTiming(call, time.Since(start))
	}
}
