package logout

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
)

// Sessions удаляет серверную сессию и cookie.
type Sessions interface {
	Destroy(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}
