// Package importer loads CSV exports into the local toolkit database so
// they can be queried with plain SQL.
package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// contextCheckInterval is how often (in rows) to check for context
// cancellation. Checking every row would be wasteful on large files.
const contextCheckInterval = 100

var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Result summarizes a completed import.
type Result struct {
	Table   string
	Columns []string
	Rows    int
}

// ImportCSV reads a CSV document and loads it into table. The header row
// defines the columns (sanitized to SQL identifiers, all TEXT); every data
// row becomes one row in the table. The whole import runs in a single
// transaction and is recorded in the import_files ledger.
func ImportCSV(ctx context.Context, db *sql.DB, table, fileName string, r io.Reader, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !identifierRegex.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file %s is empty", fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns, err := sanitizeColumns(header)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(table, columns)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, columns))
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for {
		if rows%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rows+2, err)
		}

		args := make([]any, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("insert csv row %d: %w", rows+2, err)
		}
		rows++
	}

	const ledger = `INSERT INTO import_files (file_name, table_name, row_count) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ledger, fileName, table, rows); err != nil {
		return nil, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	logger.Info("csv imported", "file", fileName, "table", table, "rows", rows)
	return &Result{Table: table, Columns: columns, Rows: rows}, nil
}

// sanitizeColumns maps CSV header cells to unique SQL identifiers.
func sanitizeColumns(header []string) ([]string, error) {
	columns := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))

	for i, cell := range header {
		name := sanitizeIdentifier(cell)
		if name == "" {
			return nil, fmt.Errorf("csv header column %d (%q) has no usable characters", i+1, cell)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate csv header column %q", name)
		}
		seen[name] = true
		columns = append(columns, name)
	}
	return columns, nil
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.', r == '/':
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "c_" + name
	}
	return name
}

func createTableSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = fmt.Sprintf("%q TEXT", c)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(cols, ", "))
}

func insertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = fmt.Sprintf("%q", c)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}
