package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finchat/internal/cli"
	"finchat/internal/config"
	"finchat/internal/log"
)

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:          "finchat",
	Short:        "Finance chatbot backend",
	Long:         "Answer personal-finance questions from a ledger, over HTTP or from the command line.",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cli.LoadEnvFile()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "TOML config file (overrides "+config.FileEnv+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
}

// setup loads the validated configuration and the process logger shared by
// every subcommand.
func setup() (*config.Config, *log.Logger, error) {
	if flagConfig != "" {
		if err := os.Setenv(config.FileEnv, flagConfig); err != nil {
			return nil, nil, fmt.Errorf("set %s: %w", config.FileEnv, err)
		}
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, cli.SetupLogger(cfg.LogLevel), nil
}
