package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbenzing/slimbooks-app/internal/app/slimbooks"
	"github.com/rbenzing/slimbooks-app/internal/config"
	applogger "github.com/rbenzing/slimbooks-app/internal/lib/logger"
)

func main() {
	cfg := config.MustLoad()
	logger := applogger.New(cfg.Env, os.Stdout)

	logger.Info("starting slimbooks", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := slimbooks.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("slimbooks stopped gracefully")
}
