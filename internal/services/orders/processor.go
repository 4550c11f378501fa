// Package services превращает оплаченные checkout-сессии в заказы и подписки.
//
// Вебхук может прийти несколько раз и параллельно. Повтор распознаётся по
// уникальному stripe_session_id в хранилище, поэтому обработка идемпотентна.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/month"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/metrics"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/paymentprovider"
)

// ErrRetryable помечает сбои, после которых провайдер должен повторить доставку.
var ErrRetryable = errors.New("retryable")

// Outcome описывает, чем закончилась обработка события.
type Outcome string

const (
	OutcomeProcessed Outcome = Outcome(metrics.WebhookProcessed)
	OutcomeDuplicate Outcome = Outcome(metrics.WebhookDuplicate)
	OutcomeUnpaid    Outcome = Outcome(metrics.WebhookUnpaid)
	OutcomeIgnored   Outcome = Outcome(metrics.WebhookIgnored)
	OutcomeInvalid   Outcome = "invalid"
)

// Provider проверяет события и отдаёт авторитетное состояние сессии.
type Provider interface {
	ConstructEvent(payload []byte, signature string) (*paymentprovider.Event, error)
	GetCheckoutSession(ctx context.Context, id string) (*paymentprovider.Session, error)
}

// Repository хранилище товаров и заказов.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order, sub *models.Subscription) (bool, error)
}

// Processor обрабатывает вебхуки провайдера.
type Processor struct {
	provider    Provider
	repo        Repository
	log         *slog.Logger
	now         func() time.Time
	orderNumber func() string
}

// NewProcessor создаёт обработчик заказов.
func NewProcessor(provider Provider, repo Repository, log *slog.Logger) *Processor {
	return &Processor{
		provider:    provider,
		repo:        repo,
		log:         log,
		now:         time.Now,
		orderNumber: uuid.NewString,
	}
}

// HandleWebhook проверяет подпись до разбора тела, отбрасывает лишние типы
// событий и обрабатывает события оплаты.
// Ошибки подписи оборачивают paymentprovider.ErrSignature, временные сбои оборачивают ErrRetryable.
func (p *Processor) HandleWebhook(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	const op = "services.orders.HandleWebhook"

	ev, err := p.provider.ConstructEvent(payload, signature)
	if err != nil {
		if !errors.Is(err, paymentprovider.ErrDisabled) {
			metrics.IncWebhook(metrics.WebhookRejected)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !ev.Fulfils() {
		metrics.IncWebhook(metrics.WebhookIgnored)
		return OutcomeIgnored, nil
	}
	if ev.SessionID == "" {
		p.log.Warn("fulfilment event without session id", slog.String("op", op), slog.String("event_id", ev.ID))
		metrics.IncWebhook(metrics.WebhookIgnored)
		return OutcomeInvalid, nil
	}

	outcome, err := p.Process(ctx, ev.SessionID)
	if err != nil {
		metrics.IncWebhook(metrics.WebhookFailed)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if outcome == OutcomeInvalid {
		metrics.IncWebhook(metrics.WebhookIgnored)
	} else {
		metrics.IncWebhook(string(outcome))
	}
	return outcome, nil
}

// Process заново запрашивает сессию у провайдера и, если она оплачена, создаёт заказ
// и подписку для продуктов доступа к данным. Повторная сессия ничего не меняет.
func (p *Processor) Process(ctx context.Context, sessionID string) (Outcome, error) {
	const op = "services.orders.Process"
	log := p.log.With(slog.String("op", op), slog.String("session_id", sessionID))

	sess, err := p.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrRetryable, err)
	}
	if !sess.Paid {
		log.Info("session not paid, skipping")
		return OutcomeUnpaid, nil
	}

	productID, err := strconv.ParseInt(sess.Metadata[paymentprovider.MetaProductID], 10, 64)
	if err != nil {
		log.Error("session has bad product_id metadata", sl.Err(err))
		return OutcomeInvalid, nil
	}
	userUID := sess.Metadata[paymentprovider.MetaUserID]
	if _, err = uuid.Parse(userUID); err != nil {
		log.Error("session has bad user_id metadata", sl.Err(err))
		return OutcomeInvalid, nil
	}

	product, err := p.repo.GetProduct(ctx, productID)
	if errors.Is(err, models.ErrNotFound) {
		log.Error("session references unknown product", slog.Int64("product_id", productID))
		return OutcomeInvalid, nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrRetryable, err)
	}

	now := p.now().UTC()
	order := &models.Order{
		OrderNumber:     p.orderNumber(),
		Status:          models.OrderCompleted,
		TotalMinor:      sess.AmountTotal,
		ProductID:       product.ID,
		UserUID:         userUID,
		StripeSessionID: sess.ID,
	}
	var sub *models.Subscription
	if product.Type == models.ProductDataAccess && product.Plan != nil {
		sub = &models.Subscription{
			PlanID:    product.Plan.ID,
			PlanName:  product.Plan.Name,
			UserUID:   userUID,
			StartDate: now,
			EndDate:   month.AddMonths(now, product.Plan.DurationMonths),
		}
	}

	created, err := p.repo.CreateOrder(ctx, order, sub)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrRetryable, err)
	}
	if !created {
		log.Info("session already fulfilled")
		return OutcomeDuplicate, nil
	}

	metrics.IncOrder(string(product.Type))
	log.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.Bool("subscription", sub != nil),
	)
	return OutcomeProcessed, nil
}
