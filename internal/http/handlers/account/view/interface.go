package view

import (
	"context"

	services "github.com/magabrotheeeer/cleansmrs-shop/internal/services/account"
)

// Service собирает данные страницы аккаунта.
type Service interface {
	Overview(ctx context.Context, userUID string) (*services.Overview, error)
}
