package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/cache"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/jwt"
)

func setupManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	cfg := config.Session{Secret: "secret", TTL: time.Hour, CookieName: "sessionid"}
	return NewManager(&cache.Cache{Db: client}, jwt.NewJWTMaker(cfg.Secret, cfg.TTL), cfg), mr
}

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestManager_StartLoad(t *testing.T) {
	m, mr := setupManager(t)
	ctx := context.Background()
	rec := httptest.NewRecorder()

	s, err := m.Start(ctx, rec, "user-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+s.ID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sessionid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	loaded, err := m.Load(ctx, requestWith(cookies))
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "user-1", loaded.UserUID)
	assert.False(t, loaded.OTPVerified)
}

func TestManager_Load_NoSession(t *testing.T) {
	m, mr := setupManager(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		cookies func(t *testing.T) []*http.Cookie
	}{
		{
			name:    "no cookie",
			cookies: func(_ *testing.T) []*http.Cookie { return nil },
		},
		{
			name: "forged cookie",
			cookies: func(_ *testing.T) []*http.Cookie {
				return []*http.Cookie{{Name: "sessionid", Value: "not-a-jwt"}}
			},
		},
		{
			name: "valid token for deleted session",
			cookies: func(t *testing.T) []*http.Cookie {
				rec := httptest.NewRecorder()
				s, err := m.Start(ctx, rec, "user-1")
				require.NoError(t, err)
				mr.Del(keyPrefix + s.ID)
				return rec.Result().Cookies()
			},
		},
		{
			name: "expired server state",
			cookies: func(t *testing.T) []*http.Cookie {
				rec := httptest.NewRecorder()
				_, err := m.Start(ctx, rec, "user-2")
				require.NoError(t, err)
				mr.FastForward(2 * time.Hour)
				return rec.Result().Cookies()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Load(ctx, requestWith(tt.cookies(t)))
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestManager_MarkOTPVerified(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()
	rec := httptest.NewRecorder()

	s, err := m.Start(ctx, rec, "user-1")
	require.NoError(t, err)
	require.NoError(t, m.MarkOTPVerified(ctx, s))

	loaded, err := m.Load(ctx, requestWith(rec.Result().Cookies()))
	require.NoError(t, err)
	assert.True(t, loaded.OTPVerified)
}

func TestManager_Destroy(t *testing.T) {
	m, mr := setupManager(t)
	ctx := context.Background()
	rec := httptest.NewRecorder()

	s, err := m.Start(ctx, rec, "user-1")
	require.NoError(t, err)
	require.NoError(t, m.MarkOTPVerified(ctx, s))

	out := httptest.NewRecorder()
	require.NoError(t, m.Destroy(ctx, out, s))
	assert.False(t, mr.Exists(keyPrefix+s.ID))

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	_, err = m.Load(ctx, requestWith(rec.Result().Cookies()))
	assert.ErrorIs(t, err, ErrNoSession)

	// новая сессия того же пользователя начинается без OTP-флага
	again, err := m.Start(ctx, httptest.NewRecorder(), "user-1")
	require.NoError(t, err)
	assert.False(t, again.OTPVerified)
	assert.NotEqual(t, s.ID, again.ID)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Session{ID: "x"}
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
