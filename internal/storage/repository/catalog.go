package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

const productSelect = `SELECT p.id, p.name, p.description, p.price_minor, p.type, p.stripe_price_id,
			      pl.id, pl.name, pl.duration_months
			  FROM products p
			  LEFT JOIN plans pl ON pl.id = p.plan_id`

// CreatePlan сохраняет план подписки.
func (s *Storage) CreatePlan(ctx context.Context, plan *models.Plan) (int64, error) {
	const op = "storage.CreatePlan"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}
	if err := plan.Validate(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	if err := s.DB.QueryRowContext(ctx, `INSERT INTO plans (name, duration_months)
			  VALUES ($1, $2) RETURNING id`, plan.Name, plan.DurationMonths).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	plan.ID = id
	return id, nil
}

// CreateProduct проверяет инварианты товара и сохраняет его.
func (s *Storage) CreateProduct(ctx context.Context, p *models.Product) (int64, error) {
	const op = "storage.CreateProduct"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, `INSERT INTO products
			      (name, description, price_minor, type, plan_id, stripe_price_id)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Name, p.Description, p.PriceMinor, string(p.Type), p.PlanID, p.StripePriceID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	p.ID = id
	return id, nil
}

// ListProducts возвращает весь каталог, упорядоченный по id.
func (s *Storage) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "storage.ListProducts"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, productSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetProduct возвращает товар с планом или ErrNotFound.
func (s *Storage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "storage.GetProduct"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.DB.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*models.Product, error) {
	var (
		p            models.Product
		productType  string
		planID       sql.NullInt64
		planName     sql.NullString
		planDuration sql.NullInt32
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceMinor, &productType, &p.StripePriceID,
		&planID, &planName, &planDuration); err != nil {
		return nil, err
	}
	p.Type = models.ProductType(productType)
	if planID.Valid {
		id := planID.Int64
		p.PlanID = &id
		p.Plan = &models.Plan{ID: id, Name: planName.String, DurationMonths: int(planDuration.Int32)}
	}
	return &p, nil
}
