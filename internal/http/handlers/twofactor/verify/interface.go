package verify

import (
	"context"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

// Service проверяет TOTP-код.
type Service interface {
	Get(ctx context.Context, userUID string) (*models.UserOTP, error)
	Validate(ctx context.Context, rec *models.UserOTP, code string) (bool, error)
}

// Sessions ставит отметку о подтверждении OTP в текущей сессии.
type Sessions interface {
	MarkOTPVerified(ctx context.Context, s *session.Session) error
}
