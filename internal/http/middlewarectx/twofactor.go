package middlewarectx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

// Пути, которые знает 2FA-шлюз.
const (
	PathSetup2FA  = "/setup-2fa"
	PathVerifyOTP = "/verify-otp"
	PathLogout    = "/logout"
)

// TwoFactorGate требует TOTP от активных пользователей группы group. Пользователи
// вне группы и анонимные запросы проходят без проверки.
//
//	no OTP record          -> setup, except setup and logout
//	secret not validated   -> setup, except setup, verify and logout
//	validated, no marker   -> verify, except verify
//	marker in session      -> pass
func TwoFactorGate(log *slog.Logger, otps OTPGetter, group string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.TwoFactorGate"

			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsActive || !user.InGroup(group) {
				next.ServeHTTP(w, r)
				return
			}

			rec, err := otps.Get(r.Context(), user.UUID)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				log.Error("failed to load otp record",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			verified := false
			if s, ok := session.FromContext(r.Context()); ok {
				verified = s.OTPVerified
			}

			if to := gateRedirect(rec, verified, gatePath(r.URL.Path)); to != "" {
				http.Redirect(w, r, to, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// gatePath убирает завершающий слэш: роутер с StripSlashes отдаёт "/logout/"
// тому же обработчику, что и "/logout".
func gatePath(path string) string {
	if len(path) > 1 {
		return strings.TrimRight(path, "/")
	}
	return path
}

// gateRedirect возвращает путь для редиректа или пустую строку.
func gateRedirect(rec *models.UserOTP, verified bool, path string) string {
	switch {
	case rec == nil:
		if path == PathSetup2FA || path == PathLogout {
			return ""
		}
		return PathSetup2FA
	case rec.ValidatedAt == nil:
		if path == PathSetup2FA || path == PathVerifyOTP || path == PathLogout {
			return ""
		}
		return PathSetup2FA
	case !verified:
		if path == PathVerifyOTP {
			return ""
		}
		return PathVerifyOTP
	default:
		return ""
	}
}
