// Package result отдаёт страницы возврата с hosted checkout.
package result

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// SuccessHandler обрабатывает GET /success.
// Заказ может ещё не существовать: вебхук приходит асинхронно.
type SuccessHandler struct {
	log     *slog.Logger
	service Service
	pages   web.Pages
}

func NewSuccess(log *slog.Logger, service Service, pages web.Pages) *SuccessHandler {
	return &SuccessHandler{log: log, service: service, pages: pages}
}

func (h *SuccessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.success"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	user, _ := middlewarectx.UserFromContext(r.Context())

	msg := web.Message{
		Heading:  "Order Complete",
		Text:     "Your order has been successfully completed.",
		Link:     "/account",
		LinkText: "View your account",
	}
	if sessionID := r.URL.Query().Get("session_id"); user != nil && sessionID != "" {
		order, err := h.service.OrderForSession(r.Context(), user.UUID, sessionID)
		switch {
		case err == nil:
			msg.Text = fmt.Sprintf("Your order %s has been successfully completed.", order.OrderNumber)
		case errors.Is(err, models.ErrNotFound):
		default:
			log.Error("failed to look up order", sl.Err(err))
		}
	}
	h.pages.RenderMessage(w, r, user, msg)
}

// CancelHandler обрабатывает GET /cancel.
type CancelHandler struct {
	pages web.Pages
}

func NewCancel(pages web.Pages) *CancelHandler {
	return &CancelHandler{pages: pages}
}

func (h *CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _ := middlewarectx.UserFromContext(r.Context())
	h.pages.RenderMessage(w, r, user, web.Message{
		Heading:  "Cancelled",
		Text:     "Ordering cancelled. You won't be charged.",
		Link:     "/products",
		LinkText: "View our Products",
	})
}
