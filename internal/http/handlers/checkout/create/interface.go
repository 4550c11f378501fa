package create

import "context"

// Service открывает hosted checkout и возвращает его URL.
type Service interface {
	Start(ctx context.Context, userUID string, productID int64) (string, error)
}
