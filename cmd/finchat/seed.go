package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finchat/internal/cli"
	"finchat/internal/ledger"
)

var flagSeedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a JSON ledger fixture into the SQLite store",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&flagSeedFile, "file", "f", "data/ledger.json", "Fixture file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	fixture, err := ledger.LoadFixture(flagSeedFile)
	if err != nil {
		return err
	}

	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := repo.Seed(cmd.Context(), fixture)
	if err != nil {
		return fmt.Errorf("seed %s: %w", cfg.SQLiteDBPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  Loaded %d users and %d transactions into %s\n", len(fixture.Users), n, cfg.SQLiteDBPath)
	return nil
}
