package models

import "fmt"

// ProductType разделяет физические товары и доступ к данным.
type ProductType string

const (
	ProductPhysical   ProductType = "physical"
	ProductDataAccess ProductType = "data_access"
)

// Plan справочные данные о длительности подписки.
type Plan struct {
	ID             int64
	Name           string
	DurationMonths int
}

// Product позиция каталога. Цены хранятся в минимальных единицах.
type Product struct {
	ID            int64
	Name          string
	Description   string
	PriceMinor    int64
	Type          ProductType
	PlanID        *int64
	Plan          *Plan
	StripePriceID string
}

// Price возвращает цену в основных единицах, например "10.00".
func (p *Product) Price() string {
	return FormatMinor(p.PriceMinor)
}

// Validate проверяет продукт перед записью.
func (p *Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if p.PriceMinor < 0 {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	switch p.Type {
	case ProductPhysical:
	case ProductDataAccess:
		if p.PlanID == nil {
			return &ValidationError{Field: "plan", Message: "data access products must have a plan"}
		}
	default:
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown product type %q", p.Type)}
	}
	if p.StripePriceID == "" {
		return &ValidationError{Field: "stripe_price_id", Message: "is required"}
	}
	return nil
}

// Validate проверяет план перед записью.
func (p *Plan) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if p.DurationMonths <= 0 {
		return &ValidationError{Field: "duration_months", Message: "must be positive"}
	}
	return nil
}

// FormatMinor печатает сумму в минимальных единицах как основные с двумя знаками.
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
