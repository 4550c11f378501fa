package mydata

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/dataapi"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Service проверяет подписку и выдаёт токен API данных.
type Service interface {
	ActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	RequestDataToken(ctx context.Context, userUID string) (*dataapi.Token, error)
}
