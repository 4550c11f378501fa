package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// CreateActivationToken привязывает новый токен к пользователю.
func (s *Storage) CreateActivationToken(ctx context.Context, token, userUID string) error {
	const op = "storage.CreateActivationToken"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO activation_tokens (token, user_uid) VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, token, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// ActivateUser атомарно активирует владельца токена и помечает токен использованным.
// Отсутствующий и уже использованный токен дают одну и ту же ErrInvalidToken.
func (s *Storage) ActivateUser(ctx context.Context, token string, at time.Time) (string, error) {
	const op = "storage.ActivateUser"
	if err := ctxDone(ctx, op); err != nil {
		return "", err
	}

	var userUID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var activatedAt sql.NullTime
		err := tx.QueryRowContext(ctx, `SELECT user_uid, activated_at
				  FROM activation_tokens
				  WHERE token = $1
				  FOR UPDATE`, token).Scan(&userUID, &activatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if activatedAt.Valid {
			return models.ErrInvalidToken
		}

		if _, err = tx.ExecContext(ctx, `UPDATE users SET is_active = true WHERE uid = $1`, userUID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE activation_tokens SET activated_at = $1 WHERE token = $2`, at, token)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// ListActivationTokens возвращает токены пользователя, новые первыми.
func (s *Storage) ListActivationTokens(ctx context.Context, userUID string) ([]*models.ActivationToken, error) {
	const op = "storage.ListActivationTokens"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT token, user_uid, created_at, activated_at
			  FROM activation_tokens
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ActivationToken
	for rows.Next() {
		var t models.ActivationToken
		var activatedAt sql.NullTime
		if err = rows.Scan(&t.Token, &t.UserUID, &t.CreatedAt, &activatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if activatedAt.Valid {
			t.ActivatedAt = &activatedAt.Time
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
