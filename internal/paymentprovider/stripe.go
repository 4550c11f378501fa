// Package paymentprovider оборачивает Stripe Checkout: создание сессии,
// получение сессии по id и проверку подписи вебхуков.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
)

// Stripe ходит в Stripe API со своим ключом на каждый экземпляр.
type Stripe struct {
	sessions      checkoutsession.Client
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripe создаёт клиента для боевого API Stripe.
func NewStripe(cfg config.Stripe) *Stripe {
	return NewStripeWithBackend(stripe.GetBackend(stripe.APIBackend), cfg)
}

// NewStripeWithBackend позволяет подменить backend, например на httptest-сервер.
func NewStripeWithBackend(backend stripe.Backend, cfg config.Stripe) *Stripe {
	return &Stripe{
		sessions:      checkoutsession.Client{B: backend, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCheckoutSession открывает разовую сессию оплаты на количество 1.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	const op = "paymentprovider.CreateCheckoutSession"
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(withSessionPlaceholder(s.successURL)),
		CancelURL:  stripe.String(s.cancelURL),
		Metadata: map[string]string{
			MetaProductID: strconv.FormatInt(req.ProductID, 10),
			MetaUserID:    req.UserUID,
		},
	}
	params.Context = ctx

	cs, err := s.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toSession(cs), nil
}

// GetCheckoutSession получает актуальное состояние сессии по id.
func (s *Stripe) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	const op = "paymentprovider.GetCheckoutSession"
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := s.sessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toSession(cs), nil
}

// ConstructEvent проверяет заголовок Stripe-Signature до того, как доверять телу.
func (s *Stripe) ConstructEvent(payload []byte, signature string) (*Event, error) {
	const op = "paymentprovider.ConstructEvent"
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if strings.HasPrefix(out.Type, "checkout.session.") && ev.Data != nil {
		var cs stripe.CheckoutSession
		if err = json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrSignature, err)
		}
		out.SessionID = cs.ID
	}
	return out, nil
}

func toSession(cs *stripe.CheckoutSession) *Session {
	return &Session{
		ID:          cs.ID,
		URL:         cs.URL,
		Paid:        cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: cs.AmountTotal,
		Metadata:    cs.Metadata,
	}
}

// withSessionPlaceholder добавляет session_id, чтобы страница success могла найти заказ.
func withSessionPlaceholder(u string) string {
	if u == "" || strings.Contains(u, "{CHECKOUT_SESSION_ID}") {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "session_id={CHECKOUT_SESSION_ID}"
}
