// Package webhook принимает события Stripe. Отвечает только статусом, без HTML.
package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/paymentprovider"
	services "github.com/magabrotheeeer/cleansmrs-shop/internal/services/orders"
)

// SignatureHeader заголовок с подписью Stripe.
const SignatureHeader = "Stripe-Signature"

const maxBodyBytes = 65536

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	outcome, err := h.service.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	switch {
	case err == nil:
		log.Info("webhook handled", slog.String("outcome", string(outcome)))
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, paymentprovider.ErrDisabled):
		log.Info("payments disabled, webhook acknowledged")
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, paymentprovider.ErrSignature):
		log.Warn("invalid webhook signature", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, services.ErrRetryable):
		log.Error("webhook processing failed, provider will retry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
	default:
		log.Error("failed to handle webhook", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}
