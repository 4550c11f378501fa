// Package shop собирает веб-приложение магазина: хранилище, сессии, сервисы и HTTP-сервер.
package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/cache"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/dataapi"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/web"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/jwt"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/token"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/metrics"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/migrations"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/paymentprovider"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/rabbitmq"
	accountservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/account"
	authservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/checkout"
	ordersservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/orders"
	otpservice "github.com/magabrotheeeer/cleansmrs-shop/internal/services/otp"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/session"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/storage/repository"
)

// Services всё, что нужно маршрутам.
type Services struct {
	Auth     *authservice.AuthService
	OTP      *otpservice.OTPService
	Catalog  *catalogservice.CatalogService
	Checkout *checkoutservice.CheckoutService
	Orders   *ordersservice.Processor
	Account  *accountservice.AccountService
	Sessions *session.Manager
	Users    *repository.Storage
	Pages    *web.Renderer
}

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает зависимости, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.shop.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db, cache: cacheRedis}

	// Без почты пользователи активируются сразу, брокер не нужен.
	var publisher authservice.Publisher
	if cfg.Email.Enabled {
		app.conn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.ch, err = rabbitmq.SetupChannel(app.conn, rabbitmq.GetEmailQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = rabbitmq.NewPublisher(app.ch)
	}

	var provider interface {
		ordersservice.Provider
		checkoutservice.Provider
	} = paymentprovider.Disabled{}
	if cfg.Stripe.Enabled {
		provider = paymentprovider.NewStripe(cfg.Stripe)
	} else {
		logger.Warn("stripe is disabled, checkout and webhooks are switched off")
	}

	pages, err := web.New(logger)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.MustRegister()

	svc := Services{
		Auth:     authservice.NewAuthService(db, token.New(), publisher, cfg.Email.Enabled, logger),
		OTP:      otpservice.NewOTPService(db, cfg.TwoFactor.Issuer, time.Now),
		Catalog:  catalogservice.NewCatalogService(db, cacheRedis, logger),
		Checkout: checkoutservice.NewCheckoutService(db, db, provider),
		Orders:   ordersservice.NewProcessor(provider, db, logger),
		Account:  accountservice.NewAccountService(db, dataapi.NewClient(cfg.DataAPI), logger),
		Sessions: session.NewManager(cacheRedis, jwt.NewJWTMaker(cfg.Session.Secret, cfg.Session.TTL), cfg.Session),
		Users:    db,
		Pages:    pages,
	}

	router := NewRouter(logger, cfg, svc, map[string]func(context.Context) error{
		"postgres": db.Ping,
		"redis":    cacheRedis.Ping,
	})

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
