// Package cli provides the command-line interface for shopify-toolkit.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebulab/shopify-toolkit/internal/bulk"
	"github.com/nebulab/shopify-toolkit/internal/config"
	"github.com/nebulab/shopify-toolkit/internal/graphql"
	"github.com/nebulab/shopify-toolkit/internal/metrics"
	"github.com/nebulab/shopify-toolkit/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger, and local database
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
	st          *store.Store

	collector = metrics.NewCollector()

	// Lazy-initialized bulk client (only commands that talk to the
	// Admin API need credentials)
	bulkClient *bulk.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shopify-toolkit",
	Short: "Shopify Admin API bulk operation toolkit",
	Long: `Shopify-toolkit runs bulk operations against the Shopify Admin GraphQL
API: submit bulk queries and mutations, watch them to completion, and
download their line-delimited JSON results.

Submitted operations are journaled in a local SQLite database so they can
be listed and resumed across invocations.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLogger = config.SetupLogger(cfg.LogFile, level)

		st, err = store.Open(cfg.DBPath, logger)
		if err != nil {
			return fmt.Errorf("open local database: %w", err)
		}
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("migrate local database: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if verbose && logger != nil {
			for _, s := range collector.Snapshot() {
				logger.Debug("call timings", "call", s.Name, "count", s.Count,
					"total_ms", s.TotalTimeMs, "avg_ms", s.AvgTimeMs,
					"min_ms", s.MinTimeMs, "max_ms", s.MaxTimeMs)
			}
			logger.Debug("session", "uptime", collector.Uptime())
		}
		if st != nil {
			if err := st.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// getBulkClient validates the remote credentials and returns the shared
// bulk client. Commands that never touch the Admin API skip this.
func getBulkClient() (*bulk.Client, error) {
	if bulkClient != nil {
		return bulkClient, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exec := graphql.New(cfg.Endpoint(), cfg.AccessToken, graphql.WithCollector(collector))
	bulkClient = bulk.NewClient(exec, bulk.WithLogger(logger), bulk.WithCollector(collector))
	return bulkClient, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(importCmd)
}
