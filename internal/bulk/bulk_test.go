package bulk_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nebulab/shopify-toolkit/internal/bulk"
	"github.com/nebulab/shopify-toolkit/internal/graphql"
)

// gqlRequest is one captured GraphQL request.
type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// fakePlatform is an httptest-backed Admin API double. Each incoming
// request is matched against responders by a substring of the document.
type fakePlatform struct {
	t          *testing.T
	server     *httptest.Server
	requests   []gqlRequest
	responders []responder
}

type responder struct {
	match string
	// respond builds the raw JSON response body for a matched request.
	respond func(req gqlRequest) string
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	f := &fakePlatform{t: t}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request: %v", err)
		}
		var req gqlRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		f.requests = append(f.requests, req)

		for _, res := range f.responders {
			if strings.Contains(req.Query, res.match) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, res.respond(req))
				return
			}
		}
		t.Fatalf("no responder for document: %s", req.Query)
	}))
	t.Cleanup(f.server.Close)
	return f
}

// on registers a responder for documents containing match.
func (f *fakePlatform) on(match string, respond func(req gqlRequest) string) {
	f.responders = append(f.responders, responder{match: match, respond: respond})
}

// client builds a bulk client wired to the fake platform.
func (f *fakePlatform) client(opts ...bulk.Option) *bulk.Client {
	exec := graphql.New(f.server.URL, "shpat_test")
	opts = append(opts, bulk.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return bulk.NewClient(exec, opts...)
}

// operationJSON renders an Operation payload the way the platform does,
// with counters serialized as strings.
func operationJSON(id string, kind bulk.Kind, status bulk.Status, url string, objectCount int) string {
	return fmt.Sprintf(`{
		"id": %q,
		"type": %q,
		"status": %q,
		"query": "{ products { edges { node { id } } } }",
		"createdAt": "2024-07-01T10:00:00Z",
		"completedAt": null,
		"objectCount": "%d",
		"fileSize": "0",
		"url": %q,
		"partialDataUrl": "",
		"errorCode": ""
	}`, id, kind, status, objectCount, url)
}

func userErrorsJSON(errs ...bulk.UserError) string {
	data, _ := json.Marshal(errs)
	return string(data)
}
