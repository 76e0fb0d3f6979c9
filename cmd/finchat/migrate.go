package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finchat/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQLite schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
		logger.Error("Migration failed", "path", cfg.SQLiteDBPath, "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  Schema up to date: %s\n", cfg.SQLiteDBPath)
	return nil
}
