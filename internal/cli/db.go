package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local toolkit database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDBMigrate,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current migration version",
	RunE:  runDBStatus,
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	// PersistentPreRunE already migrated on open; rerunning is harmless
	// and confirms the database is current.
	if err := st.Migrate(); err != nil {
		return err
	}

	version, err := st.Version()
	if err != nil {
		return err
	}
	fmt.Printf("Database %s is at version %d\n", cfg.DBPath, version)
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	version, err := st.Version()
	if err != nil {
		return err
	}
	fmt.Printf("Database: %s\nVersion:  %d\n", cfg.DBPath, version)
	return nil
}
