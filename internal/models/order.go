package models

import "time"

// OrderStatus статус заказа. Сейчас записывается только OrderCompleted.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// Order создаёт обработчик вебхука после подтверждения оплаты провайдером.
type Order struct {
	ID              int64
	OrderNumber     string
	Status          OrderStatus
	TotalMinor      int64
	ProductID       int64
	ProductName     string
	UserUID         string
	StripeSessionID string
	DatePlaced      time.Time
}

// Total возвращает сумму заказа в основных единицах.
func (o *Order) Total() float64 {
	return float64(o.TotalMinor) / 100
}

// TotalString возвращает сумму строкой вида "10.00".
func (o *Order) TotalString() string {
	return FormatMinor(o.TotalMinor)
}

// Subscription даёт доступ к data API до EndDate.
type Subscription struct {
	ID        int64
	PlanID    int64
	PlanName  string
	UserUID   string
	OrderID   int64
	StartDate time.Time
	EndDate   time.Time
}

// ActiveAt сообщает, действует ли подписка в момент t.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s.EndDate.After(t)
}
