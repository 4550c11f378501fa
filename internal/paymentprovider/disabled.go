package paymentprovider

import (
	"context"
	"errors"
)

// ErrDisabled возвращается, когда платежи выключены в конфиге.
var ErrDisabled = errors.New("payments are disabled")

// Disabled подменяет Stripe, когда stripe.enabled выключен.
type Disabled struct{}

func (Disabled) CreateCheckoutSession(context.Context, CheckoutRequest) (*Session, error) {
	return nil, ErrDisabled
}

func (Disabled) GetCheckoutSession(context.Context, string) (*Session, error) {
	return nil, ErrDisabled
}

func (Disabled) ConstructEvent([]byte, string) (*Event, error) {
	return nil, ErrDisabled
}
