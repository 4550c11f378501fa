// Package session хранит серверные сессии в redis.
//
// Браузер получает cookie с подписанным JWT, в котором лежат id сессии и UID
// пользователя. Флаг "OTP подтверждён в этой сессии" живёт только в redis и
// исчезает вместе с сессией: при logout или по истечении TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/jwt"
)

const keyPrefix = "session:"

// ErrNoSession означает, что у запроса нет действующей сессии.
var ErrNoSession = errors.New("no session")

// Store подмножество cache.Cache, нужное менеджеру.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Data то, что хранится под ключом session:<id>.
type Data struct {
	UserUID     string    `json:"user_uid"`
	OTPVerified bool      `json:"otp_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session загруженная серверная сессия.
type Session struct {
	ID string
	Data
}

// Manager управляет жизненным циклом сессий.
type Manager struct {
	store      Store
	tokens     jwt.Maker
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewManager собирает менеджер сессий из настроек.
func NewManager(store Store, tokens jwt.Maker, cfg config.Session) *Manager {
	return &Manager{
		store:      store,
		tokens:     tokens,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
	}
}

// Start открывает новую сессию для userUID и ставит cookie.
// Каждый вход получает новый id.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userUID string) (*Session, error) {
	const op = "session.Start"
	s := &Session{
		ID:   uuid.NewString(),
		Data: Data{UserUID: userUID, CreatedAt: time.Now().UTC()},
	}
	token, err := m.tokens.GenerateToken(s.ID, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = m.store.Set(ctx, keyPrefix+s.ID, s.Data, m.ttl); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Load возвращает сессию, на которую указывает cookie запроса.
// Отсутствующая, поддельная или истёкшая сессия даёт ErrNoSession.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	const op = "session.Load"
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	claims, err := m.tokens.ParseToken(cookie.Value)
	if err != nil {
		return nil, ErrNoSession
	}

	var data Data
	found, err := m.store.Get(ctx, keyPrefix+claims.SessionID(), &data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found || data.UserUID != claims.UserUID() {
		return nil, ErrNoSession
	}
	return &Session{ID: claims.SessionID(), Data: data}, nil
}

// MarkOTPVerified ставит в сессии отметку о пройденной 2FA.
func (m *Manager) MarkOTPVerified(ctx context.Context, s *Session) error {
	const op = "session.MarkOTPVerified"
	s.OTPVerified = true
	if err := m.store.Set(ctx, keyPrefix+s.ID, s.Data, m.remaining(s)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Destroy удаляет серверное состояние и просрочивает cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	const op = "session.Destroy"
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	if s == nil {
		return nil
	}
	if err := m.store.Invalidate(ctx, keyPrefix+s.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// remaining сохраняет исходный срок, отметка 2FA не продлевает сессию.
func (m *Manager) remaining(s *Session) time.Duration {
	left := time.Until(s.CreatedAt.Add(m.ttl))
	if left < time.Second {
		return time.Second
	}
	return left
}

type ctxKey struct{}

// WithSession кладёт сессию в контекст запроса.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext возвращает сессию, положенную middleware, если она есть.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
