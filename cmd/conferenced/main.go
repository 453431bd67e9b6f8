package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"conferencecentral/config"
	"conferencecentral/internal/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("app init", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("app run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
