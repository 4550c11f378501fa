// Package sender собирает воркер, который читает письма из RabbitMQ и отправляет их по SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/smtp"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/sender"
)

// App воркер отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(transport, logger),
		logger:        logger,
	}, nil
}

// Run подписывается на обе очереди писем и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	const op = "app.sender.Run"
	consumers := []struct {
		queue   string
		handler rabbitmq.Handler
	}{
		{rabbitmq.QueueActivation, a.senderService.SendActivation},
		{rabbitmq.QueueExpiry, a.senderService.SendExpiryReminder},
	}
	for _, c := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, c.queue, c.handler, a.logger); err != nil {
			a.close()
			return fmt.Errorf("%s: consume %s: %w", op, c.queue, err)
		}
		a.logger.Info("consuming", slog.String("queue", c.queue))
	}

	<-ctx.Done()
	a.logger.Info("sender shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
