package product

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Service отдаёт товар по id.
type Service interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
}
