package middlewarectx

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

// SessionLoader читает серверную сессию по cookie запроса.
type SessionLoader interface {
	Load(ctx context.Context, r *http.Request) (*session.Session, error)
}

// UserGetter загружает пользователя сессии.
type UserGetter interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// OTPGetter возвращает OTP-запись пользователя или models.ErrNotFound.
type OTPGetter interface {
	Get(ctx context.Context, userUID string) (*models.UserOTP, error)
}
