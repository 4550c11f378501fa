package mydata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/dataapi"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *ServiceMock) RequestDataToken(ctx context.Context, userUID string) (*dataapi.Token, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataapi.Token), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestMyData_ServeHTTP(t *testing.T) {
	end := time.Date(2027, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := &models.Subscription{EndDate: end}
	noSub := fmt.Errorf("x: %w", models.ErrNoActiveSubscription)

	tests := []struct {
		name       string
		method     string
		setupMock  func(*ServiceMock)
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name:       "get shows expiry",
			method:     http.MethodGet,
			setupMock:  func(m *ServiceMock) { m.On("ActiveSubscription", mock.Anything, "u1").Return(sub, nil).Once() },
			wantStatus: http.StatusOK,
			want:       []string{"1 Mar 2027 12:00 UTC", "Get API token"},
			notWant:    []string{"Your API token:"},
		},
		{
			name:   "post shows token",
			method: http.MethodPost,
			setupMock: func(m *ServiceMock) {
				m.On("ActiveSubscription", mock.Anything, "u1").Return(sub, nil).Once()
				m.On("RequestDataToken", mock.Anything, "u1").Return(&dataapi.Token{Token: "tok-123", ExpiresAt: end.Add(time.Hour)}, nil).Once()
			},
			wantStatus: http.StatusOK,
			want:       []string{"tok-123", "1 Mar 2027 13:00 UTC"},
		},
		{
			name:       "no subscription",
			method:     http.MethodGet,
			setupMock:  func(m *ServiceMock) { m.On("ActiveSubscription", mock.Anything, "u1").Return(nil, noSub).Once() },
			wantStatus: http.StatusOK,
			want:       []string{"No Active Subscription", `href="/products"`, "View our Products"},
		},
		{
			name:       "post without subscription never calls api",
			method:     http.MethodPost,
			setupMock:  func(m *ServiceMock) { m.On("ActiveSubscription", mock.Anything, "u1").Return(nil, noSub).Once() },
			wantStatus: http.StatusOK,
			want:       []string{"No Active Subscription"},
		},
		{
			name:   "data api failure",
			method: http.MethodPost,
			setupMock: func(m *ServiceMock) {
				m.On("ActiveSubscription", mock.Anything, "u1").Return(sub, nil).Once()
				m.On("RequestDataToken", mock.Anything, "u1").Return(nil, dataapi.ErrNotConfigured).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "store failure",
			method:     http.MethodGet,
			setupMock:  func(m *ServiceMock) { m.On("ActiveSubscription", mock.Anything, "u1").Return(nil, errors.New("db down")).Once() },
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			pages, err := web.New(newNoopLogger())
			require.NoError(t, err)

			req := httptest.NewRequest(tt.method, "/my-data", nil)
			req = req.WithContext(middlewarectx.WithUser(req.Context(), &models.User{UUID: "u1"}))
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc, pages).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, s := range tt.want {
				assert.Contains(t, rec.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, rec.Body.String(), s)
			}
			svc.AssertExpectations(t)
		})
	}
}
