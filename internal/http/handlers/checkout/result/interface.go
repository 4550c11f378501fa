package result

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Service находит заказ пользователя по checkout-сессии.
type Service interface {
	OrderForSession(ctx context.Context, userUID, sessionID string) (*models.Order, error)
}
