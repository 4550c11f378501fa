package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/response"
)

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
		wantBody   response.Response
	}{
		{
			name:       "all healthy",
			checks:     map[string]Check{"postgres": ok, "redis": ok},
			wantStatus: http.StatusOK,
			wantBody:   response.Response{Status: response.StatusOK, Data: map[string]any{"postgres": "ok", "redis": "ok"}},
		},
		{
			name:       "redis down",
			checks:     map[string]Check{"postgres": ok, "redis": down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody: response.Response{
				Status: response.StatusError,
				Error:  "dependency unavailable",
				Data:   map[string]any{"postgres": "ok", "redis": "unavailable"},
			},
		},
		{
			name:       "no checks",
			checks:     map[string]Check{},
			wantStatus: http.StatusOK,
			wantBody:   response.Response{Status: response.StatusOK, Data: map[string]any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), tt.checks)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}
