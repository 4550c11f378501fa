// Package services отдаёт каталог товаров, кэшируя список в redis.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

const (
	productsKey = "products:all"
	productsTTL = 5 * time.Minute
)

// Repository описывает хранилище каталога.
type Repository interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreatePlan(ctx context.Context, plan *models.Plan) (int64, error)
	CreateProduct(ctx context.Context, p *models.Product) (int64, error)
}

// Cache кэш списка товаров. Ошибки кэша не ломают чтение.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CatalogService читает и пополняет каталог.
type CatalogService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(repo Repository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, log: log}
}

// List возвращает все товары.
func (s *CatalogService) List(ctx context.Context) ([]*models.Product, error) {
	const op = "services.catalog.List"

	var cached []*models.Product
	found, err := s.cache.Get(ctx, productsKey, &cached)
	if err != nil {
		s.log.Warn("catalog cache read failed", slog.String("op", op), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, productsKey, products, productsTTL); err != nil {
		s.log.Warn("catalog cache write failed", slog.String("op", op), sl.Err(err))
	}
	return products, nil
}

// Get возвращает товар или models.ErrNotFound.
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "services.catalog.Get"
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// AddPlan сохраняет план подписки.
func (s *CatalogService) AddPlan(ctx context.Context, plan *models.Plan) error {
	const op = "services.catalog.AddPlan"
	if _, err := s.repo.CreatePlan(ctx, plan); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddProduct сохраняет товар и сбрасывает кэш списка.
func (s *CatalogService) AddProduct(ctx context.Context, p *models.Product) error {
	const op = "services.catalog.AddProduct"
	if _, err := s.repo.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, productsKey); err != nil {
		s.log.Warn("catalog cache invalidate failed", slog.String("op", op), sl.Err(err))
	}
	return nil
}
