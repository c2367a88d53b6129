// Package jsonl marshals and parses line-delimited JSON, the file format
// Shopify uses for bulk mutation input and bulk operation results.
package jsonl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one JSON object from a line-delimited document. Both sides of
// the bulk protocol deal in objects only: mutation variable sets are
// GraphQL variable maps and every result line carries a node object.
type Record = map[string]any

// LineError describes a single line that failed to parse. Line numbers are
// 1-based and refer to the original document, blank lines included.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Marshal serializes records to a line-delimited JSON document: one object
// per line, input order preserved. Zero records produce an empty document,
// which is still a valid upload.
func Marshal(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	for i, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

// Parse splits data into lines and parses each non-blank line independently
// as one JSON object. Malformed lines are never fatal: they are skipped and
// reported in the returned LineError slice so one corrupt line cannot void
// an entire result file. Records are returned in file order.
//
// A line holding valid JSON that is not an object (a bare scalar or array)
// is reported the same way; see Record for why only objects occur here.
func Parse(data []byte) ([]Record, []LineError) {
	var (
		records []Record
		errs    []LineError
	)

	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			errs = append(errs, LineError{Line: i + 1, Err: err})
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}
