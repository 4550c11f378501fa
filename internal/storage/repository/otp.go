package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// GetOTP возвращает OTP-запись пользователя или ErrNotFound.
func (s *Storage) GetOTP(ctx context.Context, userUID string) (*models.UserOTP, error) {
	const op = "storage.GetOTP"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	o, err := s.scanOTP(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// GetOrCreateOTP сохраняет secret, только если у пользователя ещё нет записи,
// и возвращает действующую запись. Повторный вызов не меняет секрет.
func (s *Storage) GetOrCreateOTP(ctx context.Context, userUID, secret string) (*models.UserOTP, error) {
	const op = "storage.GetOrCreateOTP"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO user_otps (user_uid, secret) VALUES ($1, $2)
			  ON CONFLICT (user_uid) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userUID, secret); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o, err := s.scanOTP(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// MarkOTPValidated выставляет validated_at только при первом успешном коде.
// Возвращает true, если запись была изменена этим вызовом.
func (s *Storage) MarkOTPValidated(ctx context.Context, userUID string, at time.Time) (bool, error) {
	const op = "storage.MarkOTPValidated"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE user_otps SET validated_at = $1
			  WHERE user_uid = $2 AND validated_at IS NULL`, at, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

func (s *Storage) scanOTP(ctx context.Context, userUID string) (*models.UserOTP, error) {
	o := &models.UserOTP{}
	var validatedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, `SELECT user_uid, secret, created_at, validated_at
			  FROM user_otps WHERE user_uid = $1`, userUID).
		Scan(&o.UserUID, &o.Secret, &o.CreatedAt, &validatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if validatedAt.Valid {
		o.ValidatedAt = &validatedAt.Time
	}
	return o, nil
}
