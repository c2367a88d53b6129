package bulk

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/nebulab/shopify-toolkit/internal/metrics"
)

// uploadBoundary returns a multipart boundary token that is fresh per call.
// Deriving it from a high-resolution clock keeps it from colliding with
// content bytes.
func uploadBoundary() string {
	return fmt.Sprintf("shopify-toolkit-%d", time.Now().UnixNano())
}

// uploadStaged transfers the input file to the staged target. The multipart
// body carries one part per target parameter, echoed verbatim and in the
// order the platform supplied them, followed by the file part.
//
// This is a write-once operation: no retry is attempted on failure, since a
// second attempt could stage a second file and desynchronize the path the
// subsequent run call references. Any 2xx response counts as success; the
// storage backends behind the target commonly answer 201.
func (c *Client) uploadStaged(ctx context.Context, target *StagedTarget, content []byte) error {
	start := time.Now()
	defer c.recordTiming(metrics.CallUpload, start)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.SetBoundary(uploadBoundary()); err != nil {
		return fmt.Errorf("set multipart boundary: %w", err)
	}

	for _, p := range target.Parameters {
		if err := writer.WriteField(p.Name, p.Value); err != nil {
			return fmt.Errorf("write form field %s: %w", p.Name, err)
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, stagedUploadFilename))
	header.Set("Content-Type", stagedUploadMimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload staged file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UploadError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	c.logger.Info("staged file uploaded", "bytes", len(content), "status", resp.Status)
	return nil
}
