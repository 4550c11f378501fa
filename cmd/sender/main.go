// Package main запускает воркер отправки писем.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/app/sender"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting mail worker",
		slog.String("env", cfg.Env),
		slog.String("smtp_host", cfg.SMTP.Host),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize mail worker", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("mail worker stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("mail worker stopped")
}
