package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// CreateOrder сохраняет заказ и, если sub не nil, подписку в одной транзакции.
// Дедупликация идёт по уникальному stripe_session_id: при повторной доставке
// вебхука возвращается false и ничего не пишется.
func (s *Storage) CreateOrder(ctx context.Context, order *models.Order, sub *models.Subscription) (bool, error) {
	const op = "storage.CreateOrder"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	created := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO orders (order_number, status, total_minor, product_id, user_uid, stripe_session_id)
				  VALUES ($1, $2, $3, $4, $5, $6)
				  ON CONFLICT (stripe_session_id) DO NOTHING
				  RETURNING id, date_placed`
		err := tx.QueryRowContext(ctx, query,
			order.OrderNumber, string(order.Status), order.TotalMinor, order.ProductID,
			order.UserUID, order.StripeSessionID,
		).Scan(&order.ID, &order.DatePlaced)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		created = true

		if sub == nil {
			return nil
		}
		sub.OrderID = order.ID
		return tx.QueryRowContext(ctx, `INSERT INTO subscriptions (plan_id, user_uid, order_id, start_date, end_date)
				  VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			sub.PlanID, sub.UserUID, sub.OrderID, sub.StartDate, sub.EndDate).Scan(&sub.ID)
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetOrderBySessionID возвращает заказ по идентификатору checkout-сессии.
func (s *Storage) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	const op = "storage.GetOrderBySessionID"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT o.id, o.order_number, o.status, o.total_minor, o.product_id, p.name,
			      o.user_uid, o.stripe_session_id, o.date_placed
			  FROM orders o
			  JOIN products p ON p.id = o.product_id
			  WHERE o.stripe_session_id = $1`
	o, err := scanOrder(s.DB.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return o, nil
}

// ListOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error) {
	const op = "storage.ListOrdersByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT o.id, o.order_number, o.status, o.total_minor, o.product_id, p.name,
			      o.user_uid, o.stripe_session_id, o.date_placed
			  FROM orders o
			  JOIN products p ON p.id = o.product_id
			  WHERE o.user_uid = $1
			  ORDER BY o.date_placed DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanOrder(row scanner) (*models.Order, error) {
	var o models.Order
	var status string
	if err := row.Scan(&o.ID, &o.OrderNumber, &status, &o.TotalMinor, &o.ProductID, &o.ProductName,
		&o.UserUID, &o.StripeSessionID, &o.DatePlaced); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}
