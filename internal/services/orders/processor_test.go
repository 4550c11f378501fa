package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/paymentprovider"
	services "github.com/magabrotheeeer/cleansmrs-shop/internal/services/orders"
)

const userUID = "550e8400-e29b-41d4-a716-446655440000"

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) ConstructEvent(payload []byte, signature string) (*paymentprovider.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Event), args.Error(1)
}

func (m *ProviderMock) GetCheckoutSession(ctx context.Context, id string) (*paymentprovider.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Session), args.Error(1)
}

// memRepo хранит заказы в памяти и дедуплицирует по session id, как уникальный индекс в БД.
type memRepo struct {
	mu       sync.Mutex
	products map[int64]*models.Product
	orders   map[string]*models.Order
	subs     []*models.Subscription
	failNext error
}

func newMemRepo(products ...*models.Product) *memRepo {
	r := &memRepo{products: map[int64]*models.Product{}, orders: map[string]*models.Order{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memRepo) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) CreateOrder(_ context.Context, order *models.Order, sub *models.Subscription) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return false, err
	}
	if _, dup := r.orders[order.StripeSessionID]; dup {
		return false, nil
	}
	order.ID = int64(len(r.orders) + 1)
	r.orders[order.StripeSessionID] = order
	if sub != nil {
		sub.OrderID = order.ID
		r.subs = append(r.subs, sub)
	}
	return true, nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var (
	now        = time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
	annualPlan = &models.Plan{ID: 3, Name: "Annual", DurationMonths: 12}
	monthPlan  = &models.Plan{ID: 4, Name: "Monthly", DurationMonths: 1}
	mug        = &models.Product{ID: 1, Name: "Mug", PriceMinor: 1500, Type: models.ProductPhysical}
	dataYear   = &models.Product{ID: 2, Name: "Data", PriceMinor: 1000, Type: models.ProductDataAccess, Plan: annualPlan}
	dataMonth  = &models.Product{ID: 5, Name: "Data monthly", PriceMinor: 300, Type: models.ProductDataAccess, Plan: monthPlan}
)

func paidSession(id, productID string, amount int64) *paymentprovider.Session {
	return &paymentprovider.Session{
		ID: id, Paid: true, AmountTotal: amount,
		Metadata: map[string]string{paymentprovider.MetaProductID: productID, paymentprovider.MetaUserID: userUID},
	}
}

func newProcessor(provider *ProviderMock, repo *memRepo) *services.Processor {
	p := services.NewProcessor(provider, repo, newNoopLogger())
	n := 0
	p.SetClock(func() time.Time { return now }, func() string {
		n++
		return "order-" + string(rune('0'+n))
	})
	return p
}

func TestProcessor_Process(t *testing.T) {
	tests := []struct {
		name        string
		session     *paymentprovider.Session
		providerErr error
		want        services.Outcome
		wantErr     error
		wantOrders  int
		wantSubs    int
		check       func(t *testing.T, r *memRepo)
	}{
		{
			name:       "paid data access session creates order and subscription",
			session:    paidSession("cs_1", "2", 1000),
			want:       services.OutcomeProcessed,
			wantOrders: 1,
			wantSubs:   1,
			check: func(t *testing.T, r *memRepo) {
				o := r.orders["cs_1"]
				assert.Equal(t, models.OrderCompleted, o.Status)
				assert.Equal(t, int64(1000), o.TotalMinor)
				assert.Equal(t, 10.0, o.Total())
				assert.Equal(t, userUID, o.UserUID)
				s := r.subs[0]
				assert.Equal(t, now, s.StartDate)
				assert.Equal(t, now.AddDate(1, 0, 0), s.EndDate)
				assert.Equal(t, annualPlan.ID, s.PlanID)
			},
		},
		{
			name:       "month end start is clamped to last day",
			session:    paidSession("cs_2", "5", 300),
			want:       services.OutcomeProcessed,
			wantOrders: 1,
			wantSubs:   1,
			check: func(t *testing.T, r *memRepo) {
				end := r.subs[0].EndDate
				assert.Equal(t, time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC), end)
				assert.InDelta(t, 28, end.Sub(now).Hours()/24, 1)
			},
		},
		{
			name:       "physical product creates no subscription",
			session:    paidSession("cs_3", "1", 1500),
			want:       services.OutcomeProcessed,
			wantOrders: 1,
		},
		{
			name:    "unpaid session is skipped",
			session: &paymentprovider.Session{ID: "cs_4", Paid: false, Metadata: paidSession("", "1", 0).Metadata},
			want:    services.OutcomeUnpaid,
		},
		{
			name:    "unknown product is not retried",
			session: paidSession("cs_5", "99", 100),
			want:    services.OutcomeInvalid,
		},
		{
			name:    "garbage metadata is not retried",
			session: &paymentprovider.Session{ID: "cs_6", Paid: true, Metadata: map[string]string{"product_id": "x"}},
			want:    services.OutcomeInvalid,
		},
		{
			name: "bad user id is not retried",
			session: &paymentprovider.Session{ID: "cs_7", Paid: true,
				Metadata: map[string]string{"product_id": "1", "user_id": "42"}},
			want: services.OutcomeInvalid,
		},
		{
			name:        "provider lookup failure is retryable",
			providerErr: errors.New("timeout"),
			wantErr:     services.ErrRetryable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(ProviderMock)
			repo := newMemRepo(mug, dataYear, dataMonth)
			id := "cs_x"
			if tt.session != nil {
				id = tt.session.ID
				provider.On("GetCheckoutSession", mock.Anything, id).Return(tt.session, nil).Once()
			} else {
				provider.On("GetCheckoutSession", mock.Anything, id).Return(nil, tt.providerErr).Once()
			}

			got, err := newProcessor(provider, repo).Process(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.orders)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, repo.orders, tt.wantOrders)
			assert.Len(t, repo.subs, tt.wantSubs)
			if tt.check != nil {
				tt.check(t, repo)
			}
			provider.AssertExpectations(t)
		})
	}
}

func TestProcessor_Process_Idempotent(t *testing.T) {
	provider := new(ProviderMock)
	provider.On("GetCheckoutSession", mock.Anything, "cs_1").Return(paidSession("cs_1", "2", 1000), nil)
	repo := newMemRepo(dataYear)
	p := newProcessor(provider, repo)

	first, err := p.Process(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeProcessed, first)

	second, err := p.Process(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeDuplicate, second)

	assert.Len(t, repo.orders, 1)
	assert.Len(t, repo.subs, 1)
}

func TestProcessor_Process_ConcurrentRedelivery(t *testing.T) {
	provider := new(ProviderMock)
	provider.On("GetCheckoutSession", mock.Anything, "cs_1").Return(paidSession("cs_1", "2", 1000), nil)
	repo := newMemRepo(dataYear)
	p := services.NewProcessor(provider, repo, newNoopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Process(context.Background(), "cs_1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, repo.orders, 1)
	assert.Len(t, repo.subs, 1)
}

func TestProcessor_Process_StoreFailureIsRetryable(t *testing.T) {
	provider := new(ProviderMock)
	provider.On("GetCheckoutSession", mock.Anything, "cs_1").Return(paidSession("cs_1", "1", 1500), nil)
	repo := newMemRepo(mug)
	repo.failNext = errors.New("connection reset")

	_, err := newProcessor(provider, repo).Process(context.Background(), "cs_1")
	assert.ErrorIs(t, err, services.ErrRetryable)
	assert.Empty(t, repo.orders)
}

func TestProcessor_HandleWebhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)

	tests := []struct {
		name     string
		event    *paymentprovider.Event
		eventErr error
		want     services.Outcome
		wantErr  error
		fetches  bool
	}{
		{
			name:    "completed event is processed",
			event:   &paymentprovider.Event{ID: "evt_1", Type: paymentprovider.EventCheckoutCompleted, SessionID: "cs_1"},
			want:    services.OutcomeProcessed,
			fetches: true,
		},
		{
			name:    "async payment succeeded is processed",
			event:   &paymentprovider.Event{ID: "evt_2", Type: paymentprovider.EventCheckoutAsyncPaymentSucceeded, SessionID: "cs_1"},
			want:    services.OutcomeProcessed,
			fetches: true,
		},
		{
			name:  "other event types are acknowledged without side effects",
			event: &paymentprovider.Event{ID: "evt_3", Type: "checkout.session.expired", SessionID: "cs_1"},
			want:  services.OutcomeIgnored,
		},
		{
			name:     "bad signature mutates nothing",
			eventErr: paymentprovider.ErrSignature,
			wantErr:  paymentprovider.ErrSignature,
		},
		{
			name:     "payments disabled",
			eventErr: paymentprovider.ErrDisabled,
			wantErr:  paymentprovider.ErrDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(ProviderMock)
			provider.On("ConstructEvent", payload, "sig").Return(tt.event, tt.eventErr).Once()
			if tt.fetches {
				provider.On("GetCheckoutSession", mock.Anything, "cs_1").Return(paidSession("cs_1", "2", 1000), nil).Once()
			}
			repo := newMemRepo(dataYear)

			got, err := newProcessor(provider, repo).HandleWebhook(context.Background(), payload, "sig")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.orders)
				provider.AssertNotCalled(t, "GetCheckoutSession", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if !tt.fetches {
				assert.Empty(t, repo.orders)
			}
			provider.AssertExpectations(t)
		})
	}
}
