package setup

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Service операции с OTP-секретом пользователя.
type Service interface {
	Get(ctx context.Context, userUID string) (*models.UserOTP, error)
	GetOrCreate(ctx context.Context, userUID, account string) (*models.UserOTP, error)
	ProvisioningImage(secret, account string) (string, error)
	Validate(ctx context.Context, rec *models.UserOTP, code string) (bool, error)
}
