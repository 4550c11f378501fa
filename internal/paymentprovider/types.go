package paymentprovider

import "errors"

// Ключи корреляционных метаданных, которые провайдер возвращает без изменений.
const (
	MetaProductID = "product_id"
	MetaUserID    = "user_id"
)

// ErrSignature означает повреждённый payload или неверную подпись вебхука.
var ErrSignature = errors.New("invalid webhook signature")

// CheckoutRequest описывает одну покупку в hosted checkout.
type CheckoutRequest struct {
	PriceID   string
	ProductID int64
	UserUID   string
}

// Session сессия оплаты в виде, не зависящем от провайдера.
type Session struct {
	ID          string
	URL         string
	Paid        bool
	AmountTotal int64
	Metadata    map[string]string
}

// Event проверенное событие вебхука. SessionID заполнен только для событий сессии оплаты.
type Event struct {
	ID        string
	Type      string
	SessionID string
}

// Типы событий, запускающие обработку заказа.
const (
	EventCheckoutCompleted             = "checkout.session.completed"
	EventCheckoutAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Fulfils сообщает, должно ли событие создать заказ.
func (e *Event) Fulfils() bool {
	return e.Type == EventCheckoutCompleted || e.Type == EventCheckoutAsyncPaymentSucceeded
}
