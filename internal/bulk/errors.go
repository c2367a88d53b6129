package bulk

import (
	"fmt"
	"strings"
	"time"
)

// CodeOperationInProgress is the user error code the platform returns when
// a submission is rejected because another bulk operation is still
// non-terminal. At most one operation may run per shop at any time; that
// rule is platform-owned and only ever observed here, never enforced
// locally.
const CodeOperationInProgress = "OPERATION_IN_PROGRESS"

// UserError is a structured rejection reason returned inside an otherwise
// successful response. A non-empty list on any mutation call means the call
// produced no usable result.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

func (e UserError) String() string {
	if len(e.Field) == 0 {
		return e.Message
	}
	return strings.Join(e.Field, ".") + ": " + e.Message
}

func joinUserErrors(errs []UserError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.String()
	}
	return strings.Join(msgs, "; ")
}

// InProgressError means a submission was rejected because another bulk
// operation is already non-terminal for this shop.
type InProgressError struct {
	UserErrors []UserError
}

func (e *InProgressError) Error() string {
	return "a bulk operation is already in progress: " + joinUserErrors(e.UserErrors)
}

// SubmissionError is any other submission-time rejection: user errors on
// the run call, or a staged upload target missing an expected field.
type SubmissionError struct {
	Message    string
	UserErrors []UserError
}

func (e *SubmissionError) Error() string {
	if len(e.UserErrors) == 0 {
		return "bulk submission failed: " + e.Message
	}
	return "bulk submission failed: " + joinUserErrors(e.UserErrors)
}

// UploadError means the file transfer to the staged target returned a
// non-2xx response. Uploads are write-once: the caller must not retry
// against the same target.
type UploadError struct {
	StatusCode int
	Status     string
}

func (e *UploadError) Error() string {
	return "staged upload failed: " + e.Status
}

// CancelError means the cancel call returned user errors.
type CancelError struct {
	UserErrors []UserError
}

func (e *CancelError) Error() string {
	return "bulk operation cancel failed: " + joinUserErrors(e.UserErrors)
}

// DownloadError means the result fetch returned a non-success response.
type DownloadError struct {
	StatusCode int
	Status     string
}

func (e *DownloadError) Error() string {
	return "result download failed: " + e.Status
}

// PollTimeoutError means the client-side wall-clock budget was exceeded
// while waiting for a terminal status. The remote operation keeps running;
// this is not a platform error.
type PollTimeoutError struct {
	ID      string
	Timeout time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("bulk operation %s still not finished after %s", e.ID, e.Timeout)
}

// submissionError maps the user errors of a failed submission to the right
// error kind: the single-flight code becomes InProgressError, everything
// else SubmissionError. The original messages are always carried along.
func submissionError(userErrors []UserError) error {
	for _, ue := range userErrors {
		if ue.Code == CodeOperationInProgress {
			return &InProgressError{UserErrors: userErrors}
		}
	}
	return &SubmissionError{UserErrors: userErrors}
}
