// Package config loads toolkit configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Shopify Admin API connection
	Shop        string
	AccessToken string
	APIVersion  string

	// Local toolkit database
	DBPath string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Bulk operation polling defaults
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// fileConfig mirrors the optional YAML config file. Environment variables
// take precedence over file values.
type fileConfig struct {
	Shop         string `yaml:"shop"`
	AccessToken  string `yaml:"access_token"`
	APIVersion   string `yaml:"api_version"`
	DBPath       string `yaml:"db_path"`
	LogFile      string `yaml:"log_file"`
	LogLevel     string `yaml:"log_level"`
	PollInterval string `yaml:"poll_interval"`
	PollTimeout  string `yaml:"poll_timeout"`
}

// Load reads configuration from SHOPIFY_TOOLKIT_CONFIG (or the default
// config file path) and environment variables, env winning on conflicts.
func Load() (Config, error) {
	file, err := loadFile(configFilePath())
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Shop:        getEnv("SHOPIFY_SHOP", file.Shop),
		AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", file.AccessToken),
		APIVersion:  getEnv("SHOPIFY_API_VERSION", defaultStr(file.APIVersion, "2024-07")),

		DBPath: getEnv("TOOLKIT_DB_PATH", defaultStr(file.DBPath, "shopify-toolkit.db")),

		LogFile:  getEnv("TOOLKIT_LOG_FILE", defaultStr(file.LogFile, "/tmp/shopify-toolkit.log")),
		LogLevel: parseLogLevel(getEnv("TOOLKIT_LOG_LEVEL", defaultStr(file.LogLevel, "INFO"))),
	}

	cfg.PollInterval, err = parseDurationEnv("TOOLKIT_POLL_INTERVAL", file.PollInterval, 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.PollTimeout, err = parseDurationEnv("TOOLKIT_POLL_TIMEOUT", file.PollTimeout, time.Hour)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Endpoint returns the Admin GraphQL API endpoint for the configured shop.
func (c Config) Endpoint() string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.Shop, c.APIVersion)
}

// Validate checks that the values required for remote calls are present.
func (c Config) Validate() error {
	if c.Shop == "" {
		return fmt.Errorf("shop domain not configured (set SHOPIFY_SHOP)")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("access token not configured (set SHOPIFY_ACCESS_TOKEN)")
	}
	return nil
}

func configFilePath() string {
	if path := os.Getenv("SHOPIFY_TOOLKIT_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".shopify-toolkit.yaml")
}

func loadFile(path string) (fileConfig, error) {
	var file fileConfig
	if path == "" {
		return file, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func defaultStr(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

func parseDurationEnv(key, fileVal string, defaultVal time.Duration) (time.Duration, error) {
	raw := getEnv(key, fileVal)
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
