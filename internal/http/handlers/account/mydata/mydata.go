// Package mydata отдаёт страницу доступа к данным для пользователей с активной подпиской.
package mydata

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

var noSubscription = web.Message{
	Heading:  "No Active Subscription",
	Text:     "You don't have an active subscription. Please purchase one for data access.",
	Link:     "/products",
	LinkText: "View our Products",
}

// Handler обрабатывает GET и POST /my-data.
type Handler struct {
	log     *slog.Logger
	service Service
	pages   web.Pages
}

func New(log *slog.Logger, service Service, pages web.Pages) *Handler {
	return &Handler{log: log, service: service, pages: pages}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.mydata"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	sub, err := h.service.ActiveSubscription(r.Context(), user.UUID)
	if errors.Is(err, models.ErrNoActiveSubscription) {
		h.pages.RenderMessage(w, r, user, noSubscription)
		return
	}
	if err != nil {
		log.Error("failed to check subscription", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	data := web.MyData{SubscriptionExpiry: sub.EndDate}

	if r.Method == http.MethodPost {
		tok, err := h.service.RequestDataToken(r.Context(), user.UUID)
		if errors.Is(err, models.ErrNoActiveSubscription) {
			h.pages.RenderMessage(w, r, user, noSubscription)
			return
		}
		if err != nil {
			log.Error("failed to obtain data api token", sl.Err(err))
			h.pages.RenderError(w, r, user, http.StatusBadGateway, "")
			return
		}
		data.Token = tok.Token
		data.TokenExpiry = tok.ExpiresAt
	}
	h.pages.Render(w, r, http.StatusOK, web.PageMyData, web.Page{Title: "My Data", User: user, Data: data})
}
