package bulk

import (
	"context"
	"fmt"

	"github.com/nebulab/shopify-toolkit/internal/jsonl"
)

// Staged upload parameters for bulk mutation input files. The resource
// class, filename, MIME type and HTTP method are fixed by the protocol.
const (
	stagedUploadResource = "BULK_MUTATION_VARIABLES"
	stagedUploadFilename = "bulk_op_vars.jsonl"
	stagedUploadMimeType = "text/jsonl"
	stagedUploadMethod   = "POST"
)

// SubmitOptions carries the optional knobs of a submission.
type SubmitOptions struct {
	// GroupObjects asks the platform to group a parent object with its
	// nested children on consecutive result lines.
	GroupObjects bool

	// ClientIdentifier tags a bulk mutation so the submitting client can
	// be identified later. Ignored for queries.
	ClientIdentifier string
}

// SubmitQuery submits a bulk query job. On success the returned Operation
// is the platform's initial snapshot (normally status CREATED). If the
// platform rejects the submission because another operation is still
// running, the error is an *InProgressError; other rejections come back as
// *SubmissionError carrying the user errors.
func (c *Client) SubmitQuery(ctx context.Context, document string, opts SubmitOptions) (*Operation, error) {
	const query = `
		mutation SubmitBulkQuery($query: String!, $groupObjects: Boolean) {
			bulkOperationRunQuery(query: $query, groupObjects: $groupObjects) {
				bulkOperation {
					id type status query createdAt completedAt
					objectCount fileSize url partialDataUrl errorCode
				}
				userErrors { field message code }
			}
		}
	`

	var result struct {
		BulkOperationRunQuery struct {
			BulkOperation *Operation  `json:"bulkOperation"`
			UserErrors    []UserError `json:"userErrors"`
		} `json:"bulkOperationRunQuery"`
	}
	vars := map[string]any{
		"query":        document,
		"groupObjects": opts.GroupObjects,
	}
	if err := c.exec.Execute(ctx, query, vars, &result); err != nil {
		return nil, fmt.Errorf("execute bulkOperationRunQuery: %w", err)
	}

	payload := result.BulkOperationRunQuery
	if len(payload.UserErrors) > 0 {
		return nil, submissionError(payload.UserErrors)
	}
	if payload.BulkOperation == nil {
		return nil, &SubmissionError{Message: "platform returned no operation"}
	}

	c.logger.Info("bulk query submitted",
		"id", payload.BulkOperation.ID,
		"status", payload.BulkOperation.Status)
	return payload.BulkOperation, nil
}

// SubmitMutation submits a bulk mutation job. The variable sets are
// serialized to line-delimited JSON in input order, staged via a one-time
// upload target, and the stored path is referenced in the run call.
//
// Submission is not idempotent: re-invoking after a failure stages a new
// upload and creates a new operation. Zero variable sets are allowed; the
// platform is the arbiter of whether an empty input file is acceptable.
func (c *Client) SubmitMutation(ctx context.Context, document string, variableSets []jsonl.Record, opts SubmitOptions) (*Operation, error) {
	content, err := jsonl.Marshal(variableSets)
	if err != nil {
		return nil, fmt.Errorf("serialize variable sets: %w", err)
	}

	target, err := c.createStagedUpload(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.uploadStaged(ctx, target, content); err != nil {
		return nil, err
	}

	// The storage path the run call must reference comes back as the
	// "key" form parameter of the staged target.
	stagedPath, ok := target.Parameter("key")
	if !ok {
		return nil, &SubmissionError{Message: `staged upload target has no "key" parameter`}
	}

	const query = `
		mutation SubmitBulkMutation($mutation: String!, $stagedUploadPath: String!, $groupObjects: Boolean, $clientIdentifier: String) {
			bulkOperationRunMutation(mutation: $mutation, stagedUploadPath: $stagedUploadPath, groupObjects: $groupObjects, clientIdentifier: $clientIdentifier) {
				bulkOperation {
					id type status query createdAt completedAt
					objectCount fileSize url partialDataUrl errorCode
				}
				userErrors { field message code }
			}
		}
	`

	var result struct {
		BulkOperationRunMutation struct {
			BulkOperation *Operation  `json:"bulkOperation"`
			UserErrors    []UserError `json:"userErrors"`
		} `json:"bulkOperationRunMutation"`
	}
	vars := map[string]any{
		"mutation":         document,
		"stagedUploadPath": stagedPath,
		"groupObjects":     opts.GroupObjects,
	}
	if opts.ClientIdentifier != "" {
		vars["clientIdentifier"] = opts.ClientIdentifier
	}
	if err := c.exec.Execute(ctx, query, vars, &result); err != nil {
		return nil, fmt.Errorf("execute bulkOperationRunMutation: %w", err)
	}

	payload := result.BulkOperationRunMutation
	if len(payload.UserErrors) > 0 {
		return nil, submissionError(payload.UserErrors)
	}
	if payload.BulkOperation == nil {
		return nil, &SubmissionError{Message: "platform returned no operation"}
	}

	c.logger.Info("bulk mutation submitted",
		"id", payload.BulkOperation.ID,
		"status", payload.BulkOperation.Status,
		"variable_sets", len(variableSets))
	return payload.BulkOperation, nil
}

// createStagedUpload negotiates a one-time upload target sized for a bulk
// mutation input file.
func (c *Client) createStagedUpload(ctx context.Context) (*StagedTarget, error) {
	const query = `
		mutation CreateStagedUpload($input: [StagedUploadInput!]!) {
			stagedUploadsCreate(input: $input) {
				stagedTargets {
					url resourceUrl
					parameters { name value }
				}
				userErrors { field message code }
			}
		}
	`

	var result struct {
		StagedUploadsCreate struct {
			StagedTargets []StagedTarget `json:"stagedTargets"`
			UserErrors    []UserError    `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}
	vars := map[string]any{
		"input": []map[string]any{{
			"resource":   stagedUploadResource,
			"filename":   stagedUploadFilename,
			"mimeType":   stagedUploadMimeType,
			"httpMethod": stagedUploadMethod,
		}},
	}
	if err := c.exec.Execute(ctx, query, vars, &result); err != nil {
		return nil, fmt.Errorf("execute stagedUploadsCreate: %w", err)
	}

	payload := result.StagedUploadsCreate
	if len(payload.UserErrors) > 0 {
		return nil, &SubmissionError{UserErrors: payload.UserErrors}
	}
	if len(payload.StagedTargets) == 0 {
		return nil, &SubmissionError{Message: "platform returned no staged upload target"}
	}

	return &payload.StagedTargets[0], nil
}
