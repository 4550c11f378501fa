// Package main запускает утилиту администратора магазина.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/cache"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/cli"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/migrations"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	catalogservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/catalog"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/storage/repository"
)

// backend связывает команды с Postgres и кэшем каталога.
type backend struct {
	*repository.Storage
	catalog *catalogservice.CatalogService
	cache   *cache.Cache
}

func (b *backend) Migrate() (uint, error) {
	if err := migrations.Run(b.DB); err != nil {
		return 0, err
	}
	version, _, err := migrations.Version(b.DB)
	return version, err
}

func (b *backend) AddPlan(ctx context.Context, plan *models.Plan) error {
	return b.catalog.AddPlan(ctx, plan)
}

func (b *backend) AddProduct(ctx context.Context, p *models.Product) error {
	return b.catalog.AddProduct(ctx, p)
}

func (b *backend) Close() error {
	if err := b.cache.Close(); err != nil {
		_ = b.Storage.Close()
		return err
	}
	return b.Storage.Close()
}

func connect(cfg *config.Config, logger *slog.Logger) cli.Connect {
	return func(ctx context.Context) (cli.Backend, error) {
		db, err := repository.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &backend{
			Storage: db,
			catalog: catalogservice.NewCatalogService(db, c, logger),
			cache:   c,
		}, nil
	}
}

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(connect(cfg, logger), cli.TerminalPassword)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
