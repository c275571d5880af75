package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/api"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/app"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe initializes the application and serves the HTTP API until
// interrupted.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	logger.Info("starting chatbot", slog.String("version", Version))

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", slog.Any("error", closeErr))
		}
	}()

	server := api.NewServer(a.Orchestrator, a.Sessions, a.DBPool, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		Logger:      logger,
	})

	logger.Info("HTTP server ready",
		slog.String("addr", cfg.ServerAddr),
		slog.String("api", "/api/v1/*"),
		slog.String("health", "/health, /ready"),
	)

	if err := server.Run(ctx, cfg.ServerAddr); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}
