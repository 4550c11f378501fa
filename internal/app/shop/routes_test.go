package shop

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/cache"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/dataapi"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/jwt"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/token"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/migrations"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/paymentprovider"
	accountservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/account"
	authservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/checkout"
	ordersservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/orders"
	otpservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/otp"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/storage/repository"
)

// capturePublisher запоминает опубликованные письма вместо RabbitMQ.
type capturePublisher struct {
	mu       sync.Mutex
	messages []models.ActivationEmail
}

func (p *capturePublisher) Publish(_ context.Context, _ string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg, ok := message.(models.ActivationEmail); ok {
		p.messages = append(p.messages, msg)
	}
	return nil
}

func (p *capturePublisher) last(t *testing.T) models.ActivationEmail {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.messages, "no activation email queued")
	return p.messages[len(p.messages)-1]
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testConfig() *config.Config {
	return &config.Config{
		Email:     config.Email{Enabled: true, BaseURL: "http://shop.test"},
		TwoFactor: config.TwoFactor{Issuer: "CleanSMRs", EnforcedGroup: models.GroupSiteUser},
		Session:   config.Session{Secret: "secret", TTL: time.Hour, CookieName: "sessionid"},
	}
}

// newTestRouter собирает роутер так же, как New, но поверх переданной базы,
// miniredis и publisher.
func newTestRouter(t *testing.T, db *repository.Storage, publisher authservice.Publisher) http.Handler {
	t.Helper()
	logger := newNoopLogger()
	cfg := testConfig()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	store := &cache.Cache{Db: client}

	pages, err := web.New(logger)
	require.NoError(t, err)

	provider := paymentprovider.Disabled{}
	svc := Services{
		Auth:     authservice.NewAuthService(db, token.New(), publisher, cfg.Email.Enabled, logger),
		OTP:      otpservice.NewOTPService(db, cfg.TwoFactor.Issuer, time.Now),
		Catalog:  catalogservice.NewCatalogService(db, store, logger),
		Checkout: checkoutservice.NewCheckoutService(db, db, provider),
		Orders:   ordersservice.NewProcessor(provider, db, logger),
		Account:  accountservice.NewAccountService(db, dataapi.NewClient(cfg.DataAPI), logger),
		Sessions: session.NewManager(store, jwt.NewJWTMaker(cfg.Session.Secret, cfg.Session.TTL), cfg.Session),
		Users:    db,
		Pages:    pages,
	}
	return NewRouter(logger, cfg, svc, nil)
}

func setupTestDatabase(t *testing.T) *repository.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := repository.New(connStr)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB))

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return storage
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_CheckoutResultRequiresLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	router := newTestRouter(t, &repository.Storage{DB: db}, &capturePublisher{})

	tests := []struct {
		name   string
		target string
		next   string
	}{
		{name: "success", target: "/success?session_id=cs_1", next: "/success?session_id=cs_1"},
		{name: "success with trailing slash", target: "/success/?session_id=cs_1", next: "/success/?session_id=cs_1"},
		{name: "cancel", target: "/cancel", next: "/cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/login?next="+url.QueryEscape(tt.next), rec.Header().Get("Location"))
		})
	}

	// Анонимный запрос не должен доходить до базы.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_RegisterActivateFlow(t *testing.T) {
	db := setupTestDatabase(t)
	publisher := &capturePublisher{}
	router := newTestRouter(t, db, publisher)

	form := url.Values{
		"first_name": {"Ann"},
		"last_name":  {"Lee"},
		"email":      {"ann@example.com"},
		"password1":  {"s3cret-pass"},
		"password2":  {"s3cret-pass"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration Successful")

	msg := publisher.last(t)
	assert.Equal(t, "ann@example.com", msg.Email)
	assert.Equal(t, "http://shop.test", msg.BaseURL)
	require.True(t, token.Valid(msg.Token))

	user, err := db.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/activate/"+msg.Token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Activation Successful")

	user, err = db.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	// Повторный переход по той же ссылке и мусорные токены дают 400, не 500.
	for _, target := range []string{
		"/activate/" + msg.Token,
		"/activate/" + msg.Token + "/",
		"/activate/%FF",
		"/activate/%00",
		"/activate/" + strings.ToUpper(msg.Token),
	} {
		t.Run(target, func(t *testing.T) {
			rec := serve(router, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid activation token.")
		})
	}

	// Повторная регистрация с тем же email не создаёт второго письма.
	req = httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email is already in use")
	publisher.mu.Lock()
	assert.Len(t, publisher.messages, 1)
	publisher.mu.Unlock()
}
