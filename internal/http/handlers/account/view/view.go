// Package view отдаёт страницу аккаунта: профиль, подписку и заказы.
package view

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
	pages   web.Pages
}

func New(log *slog.Logger, service Service, pages web.Pages) *Handler {
	return &Handler{log: log, service: service, pages: pages}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.view"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	overview, err := h.service.Overview(r.Context(), user.UUID)
	if err != nil {
		log.Error("failed to load account", sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusInternalServerError, "")
		return
	}
	h.pages.Render(w, r, http.StatusOK, web.PageAccount, web.Page{Title: "Account", User: user, Data: overview})
}
