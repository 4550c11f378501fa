package edit

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Service читает и сохраняет профиль.
type Service interface {
	Profile(ctx context.Context, userUID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userUID string, p models.Profile) error
}
