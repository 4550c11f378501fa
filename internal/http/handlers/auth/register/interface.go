package register

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	services "github.com/magabrotheeeer/cleansmrs-shop/internal/services/auth"
)

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}
