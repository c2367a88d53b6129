package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nebulab/shopify-toolkit/internal/importer"
)

var importTable string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import data into the local toolkit database",
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Import a CSV file into a local table",
	Long: `Import a CSV file into the local SQLite database. The header row
defines the columns; every value is stored as TEXT.

Examples:
  shopify-toolkit import csv products_export.csv
  shopify-toolkit import csv orders.csv --table orders_2024`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCSV,
}

func init() {
	importCSVCmd.Flags().StringVarP(&importTable, "table", "t", "", "target table name (default: derived from the file name)")

	importCmd.AddCommand(importCSVCmd)
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	path := args[0]

	table := importTable
	if table == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		table = strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(base, "-", "_"), " ", "_"))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	result, err := importer.ImportCSV(context.Background(), st.DB(), table, filepath.Base(path), f, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d rows into %s (%d columns)\n", result.Rows, result.Table, len(result.Columns))
	return nil
}
