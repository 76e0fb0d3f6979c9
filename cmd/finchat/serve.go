package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"finchat/internal/cli"
	apphttp "finchat/internal/http"
	"finchat/internal/ledger"
	"finchat/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	stack, err := cli.NewStack(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		return err
	}

	opts := apphttp.Options{
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AllowedOrigins:     cfg.AllowedOrigins(),
	}
	if p, ok := stack.Backend.Store.(ledger.Pinger); ok {
		opts.Ready = p
	}
	srv := apphttp.NewServer(":"+cfg.Port, stack.Chat, opts)

	ctx, done := cli.GracefulShutdown(cmd.Context(), logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := stack.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting finchat server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldProvider, cfg.LLMProvider,
		"audit", stack.Publisher != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = stack.Close()
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
