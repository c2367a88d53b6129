// Package bulk implements the client side of Shopify's bulk operation
// lifecycle: submission (with staged uploads for mutation input), status
// polling, cancellation, and result download/parsing.
package bulk

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Kind distinguishes bulk queries from bulk mutations.
type Kind string

// Bulk operation kinds.
const (
	KindQuery    Kind = "QUERY"
	KindMutation Kind = "MUTATION"
)

// Status is the remote state of a bulk operation.
type Status string

// Bulk operation statuses. CREATED, RUNNING and CANCELING are non-terminal;
// the platform keeps transitioning until one of the terminal statuses is
// reached.
const (
	StatusCreated   Status = "CREATED"
	StatusRunning   Status = "RUNNING"
	StatusCanceling Status = "CANCELING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCanceled  Status = "CANCELED"
	StatusExpired   Status = "EXPIRED"
)

// Terminal reports whether the status is final. Once a terminal status is
// observed the operation never changes again.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled, StatusExpired:
		return true
	}
	return false
}

// Count is an unsigned 64-bit counter that Shopify serializes as a JSON
// string ("1024") but that older payloads carry as a bare number.
type Count int64

// UnmarshalJSON accepts both the quoted and the bare form, and null.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse count %q: %w", data, err)
	}
	*c = Count(n)
	return nil
}

// Operation is a snapshot of a remote bulk operation. The ID is assigned
// once at submission and never changes; every poll replaces the snapshot
// with a fresher one until a terminal status is observed.
type Operation struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"type"`
	Status      Status     `json:"status"`
	Query       string     `json:"query"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// ObjectCount grows monotonically while the operation runs. FileSize
	// is present only once the result file exists.
	ObjectCount Count `json:"objectCount"`
	FileSize    Count `json:"fileSize"`

	// URL points at the result file of a completed operation.
	// PartialDataURL is populated for partially completed or canceled
	// operations. ErrorCode is set on failure-adjacent terminal states.
	URL            string `json:"url"`
	PartialDataURL string `json:"partialDataUrl"`
	ErrorCode      string `json:"errorCode"`
}

// StagedParameter is one (name, value) form parameter of a staged upload
// target.
type StagedParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StagedTarget is a one-time destination for an input file. Parameters keep
// the order the platform supplied them in: the upload protocol requires
// them to be echoed back verbatim and in order.
type StagedTarget struct {
	URL         string            `json:"url"`
	ResourceURL string            `json:"resourceUrl"`
	Parameters  []StagedParameter `json:"parameters"`
}

// Parameter returns the value of the named form parameter.
func (t *StagedTarget) Parameter(name string) (string, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}
