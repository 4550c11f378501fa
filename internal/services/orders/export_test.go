package services

import "time"

// SetClock подменяет часы и генератор номеров заказа в тестах.
func (p *Processor) SetClock(now func() time.Time, orderNumber func() string) {
	p.now = now
	p.orderNumber = orderNumber
}
