package bulk

import (
	"context"
	"fmt"
	"time"
)

// Get fetches the current snapshot of a bulk operation by id. Returns
// (nil, nil) when no operation with that id exists.
func (c *Client) Get(ctx context.Context, id string) (*Operation, error) {
	const query = `
		query GetBulkOperation($id: ID!) {
			node(id: $id) {
				... on BulkOperation {
					id type status query createdAt completedAt
					objectCount fileSize url partialDataUrl errorCode
				}
			}
		}
	`

	var result struct {
		Node *Operation `json:"node"`
	}
	if err := c.exec.Execute(ctx, query, map[string]any{"id": id}, &result); err != nil {
		return nil, fmt.Errorf("execute bulk operation lookup: %w", err)
	}
	// A node of another type unmarshals to an Operation without an id.
	if result.Node == nil || result.Node.ID == "" {
		return nil, nil
	}
	return result.Node, nil
}

// Current fetches the shop's single non-terminal bulk operation, optionally
// filtered by kind. Returns (nil, nil) when none exists; absence is not an
// error.
func (c *Client) Current(ctx context.Context, kind *Kind) (*Operation, error) {
	const query = `
		query CurrentBulkOperation($type: BulkOperationType) {
			currentBulkOperation(type: $type) {
				id type status query createdAt completedAt
				objectCount fileSize url partialDataUrl errorCode
			}
		}
	`

	vars := map[string]any{}
	if kind != nil {
		vars["type"] = string(*kind)
	}

	var result struct {
		CurrentBulkOperation *Operation `json:"currentBulkOperation"`
	}
	if err := c.exec.Execute(ctx, query, vars, &result); err != nil {
		return nil, fmt.Errorf("execute currentBulkOperation: %w", err)
	}
	return result.CurrentBulkOperation, nil
}

// PollOptions configures PollUntilDone. Interval and Timeout must both be
// positive.
type PollOptions struct {
	// Interval is the sleep between consecutive status fetches.
	Interval time.Duration

	// Timeout is the client-side wall-clock budget for the whole loop. An
	// operation that is already terminal on the first fetch returns
	// regardless of Timeout.
	Timeout time.Duration

	// OnUpdate, if set, is invoked synchronously with every snapshot,
	// including the final terminal one (exactly once).
	OnUpdate func(*Operation)
}

// PollUntilDone fetches the operation's status until a terminal state is
// observed or the timeout budget is exhausted. A fetch failure propagates
// immediately; no fetch is retried beyond the next loop iteration.
func (c *Client) PollUntilDone(ctx context.Context, id string, opts PollOptions) (*Operation, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", opts.Interval)
	}
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("poll timeout must be positive, got %s", opts.Timeout)
	}

	start := time.Now()
	for {
		op, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if op == nil {
			return nil, fmt.Errorf("bulk operation %s not found", id)
		}

		// The callback always sees the snapshot before the terminal
		// check, so the terminal snapshot is delivered exactly once.
		if opts.OnUpdate != nil {
			opts.OnUpdate(op)
		}

		if op.Status.Terminal() {
			c.logger.Info("bulk operation finished",
				"id", op.ID,
				"status", op.Status,
				"objects", int64(op.ObjectCount),
				"elapsed", time.Since(start).Round(time.Millisecond))
			return op, nil
		}

		if time.Since(start) > opts.Timeout {
			return nil, &PollTimeoutError{ID: id, Timeout: opts.Timeout}
		}

		c.logger.Debug("bulk operation still running",
			"id", op.ID,
			"status", op.Status,
			"objects", int64(op.ObjectCount))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
}

// Cancel requests early termination of a running bulk operation. The
// returned snapshot may still show a non-terminal status (CANCELING): the
// platform transitions asynchronously, so callers needing the final state
// must poll.
func (c *Client) Cancel(ctx context.Context, id string) (*Operation, error) {
	const query = `
		mutation CancelBulkOperation($id: ID!) {
			bulkOperationCancel(id: $id) {
				bulkOperation {
					id type status query createdAt completedAt
					objectCount fileSize url partialDataUrl errorCode
				}
				userErrors { field message code }
			}
		}
	`

	var result struct {
		BulkOperationCancel struct {
			BulkOperation *Operation  `json:"bulkOperation"`
			UserErrors    []UserError `json:"userErrors"`
		} `json:"bulkOperationCancel"`
	}
	if err := c.exec.Execute(ctx, query, map[string]any{"id": id}, &result); err != nil {
		return nil, fmt.Errorf("execute bulkOperationCancel: %w", err)
	}

	payload := result.BulkOperationCancel
	if len(payload.UserErrors) > 0 {
		return nil, &CancelError{UserErrors: payload.UserErrors}
	}

	c.logger.Info("bulk operation cancel requested", "id", id)
	return payload.BulkOperation, nil
}
