// Package services открывает checkout-сессии у платёжного провайдера.
// Локальный заказ здесь не создаётся: он появится только после вебхука.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/paymentprovider"
)

// ProductGetter возвращает товар по id.
type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// OrderLookup находит заказ по checkout-сессии.
type OrderLookup interface {
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
}

// Provider открывает hosted checkout.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CheckoutRequest) (*paymentprovider.Session, error)
}

// CheckoutService связывает товар, пользователя и провайдера.
type CheckoutService struct {
	products ProductGetter
	orders   OrderLookup
	provider Provider
}

// NewCheckoutService создаёт сервис оформления покупки.
func NewCheckoutService(products ProductGetter, orders OrderLookup, provider Provider) *CheckoutService {
	return &CheckoutService{products: products, orders: orders, provider: provider}
}

// Start возвращает URL страницы оплаты у провайдера для покупки одной единицы productID.
func (s *CheckoutService) Start(ctx context.Context, userUID string, productID int64) (string, error) {
	const op = "services.checkout.Start"

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	sess, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutRequest{
		PriceID:   product.StripePriceID,
		ProductID: product.ID,
		UserUID:   userUID,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, models.ErrPaymentProvider, err)
	}
	if sess.URL == "" {
		return "", fmt.Errorf("%s: %w: session %s has no url", op, models.ErrPaymentProvider, sess.ID)
	}
	return sess.URL, nil
}

// OrderForSession возвращает заказ вызывающего по сессии оплаты.
// Чужие заказы считаются ненайденными.
func (s *CheckoutService) OrderForSession(ctx context.Context, userUID, sessionID string) (*models.Order, error) {
	const op = "services.checkout.OrderForSession"
	if sessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	order, err := s.orders.GetOrderBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if order.UserUID != userUID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return order, nil
}

// IsDisabled сообщает, означает ли err, что платежи выключены.
func IsDisabled(err error) bool {
	return errors.Is(err, paymentprovider.ErrDisabled)
}
