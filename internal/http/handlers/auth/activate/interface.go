package activate

import "context"

// Service активирует аккаунт по токену.
type Service interface {
	Activate(ctx context.Context, token string) error
}
