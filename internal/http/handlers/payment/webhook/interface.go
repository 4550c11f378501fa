package webhook

import (
	"context"

	services "github.com/magabrotheeeer/cleansmrs-shop/internal/services/orders"
)

// Service проверяет подпись и обрабатывает событие провайдера.
type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (services.Outcome, error)
}
