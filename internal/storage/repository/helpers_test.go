package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/migrations"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

func setupTestDatabase(t *testing.T) *Storage {
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

	storage, err := New(connStr)
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

// TestDataFactory создаёт связанные тестовые записи.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateUser(t *testing.T, email string, active bool, groups ...string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "hash", FirstName: "Ann", LastName: "Lee", IsActive: active, Groups: groups}
	_, err := f.storage.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return u
}

func (f *TestDataFactory) CreatePlan(t *testing.T, name string, months int) *models.Plan {
	t.Helper()
	p := &models.Plan{Name: name, DurationMonths: months}
	_, err := f.storage.CreatePlan(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (f *TestDataFactory) CreatePhysicalProduct(t *testing.T, name string, priceMinor int64) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, PriceMinor: priceMinor, Type: models.ProductPhysical, StripePriceID: "price_" + name}
	_, err := f.storage.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (f *TestDataFactory) CreateDataProduct(t *testing.T, name string, priceMinor int64, plan *models.Plan) *models.Product {
	t.Helper()
	planID := plan.ID
	p := &models.Product{Name: name, PriceMinor: priceMinor, Type: models.ProductDataAccess, PlanID: &planID, StripePriceID: "price_" + name}
	_, err := f.storage.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return p
}

// TestVerification проверяет состояние таблиц напрямую.
type TestVerification struct {
	storage *Storage
}

func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

func (v *TestVerification) Count(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	require.NoError(t, v.storage.DB.QueryRow(query, args...).Scan(&n))
	return n
}

func (v *TestVerification) UserActive(t *testing.T, uid string) bool {
	t.Helper()
	var active bool
	require.NoError(t, v.storage.DB.QueryRow(`SELECT is_active FROM users WHERE uid = $1`, uid).Scan(&active))
	return active
}
