// Package scheduler собирает планировщик напоминаний об окончании подписки.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/rabbitmq"
	schedulerservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/scheduler"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/storage/repository"
)

// App процесс, рассылающий напоминания об окончании подписок.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// Схему создаёт веб-приложение, планировщик только ждёт её.
func waitForDB(ctx context.Context, db *repository.Storage, log *slog.Logger) error {
	var err error
	for attempt := 1; attempt <= dbReadyAttempts; attempt++ {
		if err = repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		log.Warn("database not ready", slog.Int("attempt", attempt), sl.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", dbReadyAttempts, err)
}

// New подключает postgres и RabbitMQ и собирает сервис напоминаний.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: storage: %w", op, err)
	}
	if err = waitForDB(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: rabbitmq: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: rabbitmq channel: %w", op, err)
	}

	a := &App{db: db, conn: conn, ch: ch, logger: logger}
	a.schedulerService = schedulerservice.NewSchedulerService(
		db, rabbitmq.NewPublisher(ch),
		cfg.Scheduler.Interval, cfg.Scheduler.Lookahead,
		logger,
	)
	return a, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
