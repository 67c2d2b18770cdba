package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ssbags/storefront/internal/app"
	"github.com/ssbags/storefront/internal/config"
	"github.com/ssbags/storefront/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration from .env and environment variables.
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return 1
	}

	// Logs go to stderr; command output owns stdout.
	log := logger.NewWithWriter(app.ServiceName, cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, log, os.Stdout, os.Stderr)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = application.Close(closeCtx)
	}()

	return application.Run(ctx, os.Args[1:])
}
