package bulk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nebulab/shopify-toolkit/internal/jsonl"
	"github.com/nebulab/shopify-toolkit/internal/metrics"
)

// DownloadResults fetches and parses the result file of a completed
// operation. An operation without a result URL returns (nil, nil) without
// making a request: producing no result is not an error.
func (c *Client) DownloadResults(ctx context.Context, op *Operation) ([]jsonl.Record, error) {
	if op == nil || op.URL == "" {
		return nil, nil
	}
	return c.DownloadURL(ctx, op.URL)
}

// DownloadURL fetches a result file by URL and parses it as line-delimited
// JSON. Malformed lines are logged and skipped; the returned records are
// the successfully parsed lines in file order.
func (c *Client) DownloadURL(ctx context.Context, url string) ([]jsonl.Record, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	records, lineErrs := jsonl.Parse(body)
	for _, le := range lineErrs {
		c.logger.Warn("skipping malformed result line", "line", le.Line, "error", le.Err)
	}

	c.logger.Info("result file downloaded",
		"bytes", len(body),
		"records", len(records),
		"skipped", len(lineErrs))
	return records, nil
}

// DownloadRaw fetches a result file by URL and returns the exact response
// body, unparsed and untrimmed.
func (c *Client) DownloadRaw(ctx context.Context, url string) ([]byte, error) {
	return c.fetch(ctx, url)
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	defer c.recordTiming(metrics.CallDownload, start)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download result file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}
	return body, nil
}
