// Package health отдаёт состояние зависимостей для балансировщика и оркестратора.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/response"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
)

// Check проверяет одну зависимость.
type Check func(ctx context.Context) error

type Handler struct {
	log     *slog.Logger
	checks  map[string]Check
	timeout time.Duration
}

// New создает новый экземпляр Handler. checks: имя зависимости -> проверка.
func New(log *slog.Logger, checks map[string]Check) *Handler {
	return &Handler{log: log, checks: checks, timeout: 2 * time.Second}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("dependency unhealthy", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("dependency unavailable", status))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response.OKWithData(status))
}
