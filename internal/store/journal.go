package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nebulab/shopify-toolkit/internal/bulk"
)

// ErrNotFound indicates the requested journal entry does not exist.
// Use errors.Is() to check for it in calling code.
var ErrNotFound = errors.New("operation not found in journal")

// JournalEntry is one locally recorded bulk operation snapshot.
type JournalEntry struct {
	ID             string
	Kind           string
	Status         string
	Query          string
	ObjectCount    int64
	FileSize       int64
	ResultURL      string
	PartialDataURL string
	ErrorCode      string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	RecordedAt     time.Time
}

// RecordOperation inserts or refreshes the journal entry for an operation.
// Every observed snapshot replaces the previous one; the journal keeps the
// latest known state per operation id.
func (s *Store) RecordOperation(ctx context.Context, op *bulk.Operation) error {
	const query = `
		INSERT INTO bulk_operations (
			id, kind, status, query, object_count, file_size,
			result_url, partial_data_url, error_code, created_at, completed_at, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			object_count = excluded.object_count,
			file_size = excluded.file_size,
			result_url = excluded.result_url,
			partial_data_url = excluded.partial_data_url,
			error_code = excluded.error_code,
			completed_at = excluded.completed_at,
			recorded_at = excluded.recorded_at`

	_, err := s.db.ExecContext(ctx, query,
		op.ID, string(op.Kind), string(op.Status), op.Query,
		int64(op.ObjectCount), int64(op.FileSize),
		op.URL, op.PartialDataURL, op.ErrorCode,
		op.CreatedAt, op.CompletedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record operation %s: %w", op.ID, err)
	}
	return nil
}

// GetOperation returns the journal entry for the given operation id.
func (s *Store) GetOperation(ctx context.Context, id string) (*JournalEntry, error) {
	const query = `
		SELECT id, kind, status, query, object_count, file_size,
		       result_url, partial_data_url, error_code, created_at, completed_at, recorded_at
		FROM bulk_operations WHERE id = ?`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get operation %s: %w", id, err)
	}
	return entry, nil
}

// ListOperations returns the most recently created entries, newest first.
func (s *Store) ListOperations(ctx context.Context, limit int) ([]JournalEntry, error) {
	const query = `
		SELECT id, kind, status, query, object_count, file_size,
		       result_url, partial_data_url, error_code, created_at, completed_at, recorded_at
		FROM bulk_operations
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*JournalEntry, error) {
	var e JournalEntry
	var completedAt sql.NullTime
	err := row.Scan(&e.ID, &e.Kind, &e.Status, &e.Query, &e.ObjectCount, &e.FileSize,
		&e.ResultURL, &e.PartialDataURL, &e.ErrorCode, &e.CreatedAt, &completedAt, &e.RecordedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return &e, nil
}
