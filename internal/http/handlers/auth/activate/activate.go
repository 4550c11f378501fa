// Package activate реализует переход по ссылке активации из письма.
package activate

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Handler обрабатывает GET /activate/{token}.
type Handler struct {
	log     *slog.Logger
	service Service
	pages   web.Pages
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, pages web.Pages) *Handler {
	return &Handler{log: log, service: service, pages: pages}
}

// ServeHTTP не отличает неизвестный токен от использованного.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.activate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	err := h.service.Activate(r.Context(), chi.URLParam(r, "token"))
	if errors.Is(err, models.ErrInvalidToken) {
		log.Info("activation rejected")
		h.pages.RenderError(w, r, nil, http.StatusBadRequest, "Invalid activation token.")
		return
	}
	if err != nil {
		log.Error("failed to activate account", sl.Err(err))
		h.pages.RenderError(w, r, nil, http.StatusInternalServerError, "")
		return
	}

	h.pages.RenderMessage(w, r, nil, web.Message{
		Heading:  "Activation Successful",
		Text:     "Your account has been successfully activated. You can now log in.",
		Link:     "/login",
		LinkText: "Log in",
	})
}
