// Package logout завершает сессию пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

// Handler обрабатывает POST /logout.
type Handler struct {
	log      *slog.Logger
	sessions Sessions
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Sessions) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP удаляет сессию вместе с отметкой OTP и уводит на главную.
// Ошибка redis не мешает выходу: cookie всё равно сбрасывается.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if s, ok := session.FromContext(r.Context()); ok {
		if err := h.sessions.Destroy(r.Context(), w, s); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
		} else {
			log.Info("user logged out", slog.String("user_uid", s.UserUID))
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
