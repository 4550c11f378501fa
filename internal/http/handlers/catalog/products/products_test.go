package products

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestProducts_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		products   []*models.Product
		err        error
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name: "list shows first sentence and price",
			products: []*models.Product{
				{ID: 7, Name: "Reactor feed", Description: "Live telemetry. Updated hourly from **all** sites.", PriceMinor: 1000},
			},
			wantStatus: http.StatusOK,
			want:       []string{`href="/products/7"`, "Reactor feed", "Live telemetry.", "10.00"},
			notWant:    []string{"Updated hourly"},
		},
		{
			name:       "empty catalog",
			products:   []*models.Product{},
			wantStatus: http.StatusOK,
			want:       []string{"No products are available right now."},
		},
		{
			name:       "store failure",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			want:       []string{"An error occurred while processing your request."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.err != nil {
				svc.On("List", mock.Anything).Return(nil, tt.err).Once()
			} else {
				svc.On("List", mock.Anything).Return(tt.products, nil).Once()
			}
			pages, err := web.New(newNoopLogger())
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc, pages).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

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
