package products

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Service отдаёт каталог.
type Service interface {
	List(ctx context.Context) ([]*models.Product, error)
}
