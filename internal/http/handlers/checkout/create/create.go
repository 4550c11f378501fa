// Package create начинает оплату товара и перенаправляет на страницу провайдера.
package create

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	services "github.com/magabrotheeeer/cleansmrs-shop/internal/services/checkout"
)

// Handler обрабатывает POST /checkout/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
	pages   web.Pages
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, pages web.Pages) *Handler {
	return &Handler{log: log, service: service, pages: pages}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.pages.RenderError(w, r, user, http.StatusNotFound, "")
		return
	}

	url, err := h.service.Start(r.Context(), user.UUID, id)
	switch {
	case err == nil:
		log.Info("checkout started", slog.Int64("product_id", id), slog.String("user_uid", user.UUID))
		http.Redirect(w, r, url, http.StatusSeeOther)
	case errors.Is(err, models.ErrNotFound):
		h.pages.RenderError(w, r, user, http.StatusNotFound, "")
	case services.IsDisabled(err):
		log.Warn("checkout requested while payments are disabled")
		h.pages.RenderMessage(w, r, user, web.Message{
			Heading:  "Payments unavailable",
			Text:     "Online payments are currently disabled. Please try again later.",
			Link:     "/products",
			LinkText: "View our Products",
		})
	default:
		log.Error("failed to start checkout", slog.Int64("product_id", id), sl.Err(err))
		h.pages.RenderError(w, r, user, http.StatusBadGateway, "")
	}
}
