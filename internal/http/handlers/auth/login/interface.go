package login

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

// Service проверяет учётные данные.
type Service interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// Sessions открывает сессию после успешного входа.
type Sessions interface {
	Start(ctx context.Context, w http.ResponseWriter, userUID string) (*session.Session, error)
}
