package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// LatestSubscription возвращает подписку пользователя с самой поздней датой окончания.
func (s *Storage) LatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.LatestSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT s.id, s.plan_id, pl.name, s.user_uid, s.order_id, s.start_date, s.end_date
			  FROM subscriptions s
			  JOIN plans pl ON pl.id = s.plan_id
			  WHERE s.user_uid = $1
			  ORDER BY s.end_date DESC
			  LIMIT 1`
	var sub models.Subscription
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&sub.ID, &sub.PlanID, &sub.PlanName, &sub.UserUID, &sub.OrderID, &sub.StartDate, &sub.EndDate,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &sub, nil
}

// ListExpiringSubscriptions находит подписки, заканчивающиеся в полуинтервале (from, to].
func (s *Storage) ListExpiringSubscriptions(ctx context.Context, from, to time.Time) ([]models.ExpiryReminder, error) {
	const op = "storage.ListExpiringSubscriptions"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.email, u.first_name, u.last_name, pl.name, s.end_date
			  FROM subscriptions s
			  JOIN users u ON u.uid = s.user_uid
			  JOIN plans pl ON pl.id = s.plan_id
			  WHERE s.end_date > $1 AND s.end_date <= $2
			  ORDER BY s.end_date`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.ExpiryReminder
	for rows.Next() {
		var r models.ExpiryReminder
		u := models.User{}
		if err = rows.Scan(&r.Email, &u.FirstName, &u.LastName, &r.PlanName, &r.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		r.Name = u.FullName()
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
