// Package middlewarectx содержит HTTP middleware сайта: загрузку сессии и
// пользователя, обязательный вход, 2FA-шлюз, ограничение частоты и метрики.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

type userKey struct{}

// WithUser кладёт текущего пользователя в контекст.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext возвращает вошедшего пользователя, если он есть.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// LoadSession находит сессию по cookie и её пользователя. Запросы без
// действующей сессии или с удалённым либо неактивным пользователем идут дальше анонимно.
func LoadSession(log *slog.Logger, sessions SessionLoader, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.LoadSession"

			s, err := sessions.Load(r.Context(), r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					log.Error("failed to load session",
						slog.String("op", op),
						slog.String("request_id", middleware.GetReqID(r.Context())),
						sl.Err(err),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUser(r.Context(), s.UserUID)
			if err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					log.Error("failed to load session user",
						slog.String("op", op),
						slog.String("request_id", middleware.GetReqID(r.Context())),
						sl.Err(err),
					)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !user.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			ctx := session.WithSession(r.Context(), s)
			ctx = WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin отправляет анонимных пользователей на /login?next=<path>.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
