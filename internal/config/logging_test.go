package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLoggerWithWritersFanout(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("bulk operation submitted", "id", "gid://shopify/BulkOperation/1")

	if !strings.Contains(stderr.String(), "bulk operation submitted") {
		t.Errorf("stderr output missing message: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "id=gid://shopify/BulkOperation/1") {
		t.Errorf("stderr output missing attribute: %q", stderr.String())
	}

	var record map[string]any
	if err := json.Unmarshal(file.Bytes(), &record); err != nil {
		t.Fatalf("file output is not JSON: %v (%q)", err, file.String())
	}
	if record["msg"] != "bulk operation submitted" {
		t.Errorf("file record msg = %v", record["msg"])
	}
	if record["id"] != "gid://shopify/BulkOperation/1" {
		t.Errorf("file record id = %v", record["id"])
	}
}

func TestSetupLoggerWithWritersLevel(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("below threshold")

	if stderr.Len() != 0 {
		t.Errorf("debug record leaked to stderr: %q", stderr.String())
	}
	if file.Len() != 0 {
		t.Errorf("debug record leaked to file: %q", file.String())
	}
}

func TestSetupLoggerFallsBackToStderr(t *testing.T) {
	// A directory component that does not exist makes the open fail.
	path := filepath.Join(t.TempDir(), "missing", "toolkit.log")

	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	defer cleanup()

	if logger == nil {
		t.Fatal("expected a stderr-only logger, got nil")
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup of stderr-only logger failed: %v", err)
	}
}
