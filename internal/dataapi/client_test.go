package dataapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
)

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantToken  string
		wantExpiry time.Time
	}{
		{
			name:       "rfc3339 expiry",
			status:     http.StatusOK,
			body:       `{"token":"jwt-1","expires_at":"2030-01-02T03:04:05Z"}`,
			wantToken:  "jwt-1",
			wantExpiry: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name:       "naive iso expiry",
			status:     http.StatusOK,
			body:       `{"token":"jwt-2","expires_at":"2030-01-02T03:04:05.123456"}`,
			wantToken:  "jwt-2",
			wantExpiry: time.Date(2030, 1, 2, 3, 4, 5, 123456000, time.UTC),
		},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"bad creds"}`, wantErr: true},
		{name: "malformed json", status: http.StatusOK, body: `{`, wantErr: true},
		{name: "missing token", status: http.StatusOK, body: `{"expires_at":"2030-01-02T03:04:05Z"}`, wantErr: true},
		{name: "bad expiry", status: http.StatusOK, body: `{"token":"x","expires_at":"tomorrow"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/login", r.URL.Path)
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "api", user)
				assert.Equal(t, "secret", pass)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(config.DataAPI{URL: srv.URL + "/", User: "api", Password: "secret", Timeout: time.Second})
			got, err := c.Login(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, got.Token)
			assert.True(t, tt.wantExpiry.Equal(got.ExpiresAt))
		})
	}
}

func TestClient_Login_NotConfigured(t *testing.T) {
	_, err := NewClient(config.DataAPI{}).Login(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Login_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(config.DataAPI{URL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Login(context.Background())
	assert.Error(t, err)
}
