package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOPIFY_TOOLKIT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	for _, key := range []string{
		"SHOPIFY_SHOP", "SHOPIFY_ACCESS_TOKEN", "SHOPIFY_API_VERSION",
		"TOOLKIT_DB_PATH", "TOOLKIT_LOG_LEVEL", "TOOLKIT_POLL_INTERVAL", "TOOLKIT_POLL_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIVersion != "2024-07" {
		t.Errorf("APIVersion = %q, want default", cfg.APIVersion)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %s, want 5s", cfg.PollInterval)
	}
	if cfg.PollTimeout != time.Hour {
		t.Errorf("PollTimeout = %s, want 1h", cfg.PollTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolkit.yaml")
	yaml := "shop: file-shop.myshopify.com\naccess_token: file-token\npoll_interval: 2s\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SHOPIFY_TOOLKIT_CONFIG", path)
	t.Setenv("SHOPIFY_SHOP", "env-shop.myshopify.com")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")
	os.Unsetenv("SHOPIFY_ACCESS_TOKEN")
	t.Setenv("TOOLKIT_POLL_INTERVAL", "")
	os.Unsetenv("TOOLKIT_POLL_INTERVAL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Env wins over file, file wins over default.
	if cfg.Shop != "env-shop.myshopify.com" {
		t.Errorf("Shop = %q, want env value", cfg.Shop)
	}
	if cfg.AccessToken != "file-token" {
		t.Errorf("AccessToken = %q, want file value", cfg.AccessToken)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %s, want file value 2s", cfg.PollInterval)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("SHOPIFY_TOOLKIT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TOOLKIT_POLL_INTERVAL", "-5s")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a negative poll interval")
	}
}

func TestEndpoint(t *testing.T) {
	cfg := Config{Shop: "acme.myshopify.com", APIVersion: "2024-07"}
	want := "https://acme.myshopify.com/admin/api/2024-07/graphql.json"
	if got := cfg.Endpoint(); got != want {
		t.Errorf("Endpoint() = %q, want %q", got, want)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
