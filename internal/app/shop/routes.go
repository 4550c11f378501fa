package shop

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/account/edit"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/account/mydata"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/account/view"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/auth/activate"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/catalog/index"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/catalog/product"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/catalog/products"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/checkout/create"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/checkout/result"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/health"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/payment/webhook"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/twofactor/setup"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/handlers/twofactor/verify"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/http/middlewarectx"
)

// Лимит POST-запросов с одного IP: логин, регистрация, OTP.
const (
	postRate   = rate.Limit(1)
	postBurst  = 10
	limiterTTL = 10 * time.Minute
)

// NewRouter регистрирует все маршруты сайта.
func NewRouter(logger *slog.Logger, cfg *config.Config, svc Services, checks map[string]func(context.Context) error) http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.StripSlashes,
		middlewarectx.Metrics,
	)

	healthChecks := make(map[string]health.Check, len(checks))
	for name, check := range checks {
		healthChecks[name] = check
	}
	r.Get("/healthz", health.New(logger, healthChecks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	// Вебхук вызывает Stripe: без сессии, 2FA и лимитов.
	r.Post("/stripe_webhook", webhook.New(logger, svc.Orders).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.LoadSession(logger, svc.Sessions, svc.Users))
		r.Use(middlewarectx.TwoFactorGate(logger, svc.OTP, cfg.TwoFactor.EnforcedGroup))
		r.Use(middlewarectx.RateLimitMiddleware(logger, middlewarectx.NewRateLimiter(postRate, postBurst, limiterTTL)))

		// Открытые страницы
		r.Get("/", index.New(svc.Pages).ServeHTTP)
		getPost(r, "/register", register.New(logger, svc.Auth, svc.Pages, cfg.Email.BaseURL))
		getPost(r, "/login", login.New(logger, svc.Auth, svc.Sessions, svc.Pages))
		r.Post("/logout", logout.New(logger, svc.Sessions).ServeHTTP)
		r.Get("/activate/{token}", activate.New(logger, svc.Auth, svc.Pages).ServeHTTP)
		r.Get("/products", products.New(logger, svc.Catalog, svc.Pages).ServeHTTP)
		r.Get("/products/{id}", product.New(logger, svc.Catalog, svc.Pages).ServeHTTP)

		// Только для вошедших
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireLogin)
			getPost(r, middlewarectx.PathSetup2FA, setup.New(logger, svc.OTP, svc.Pages))
			getPost(r, middlewarectx.PathVerifyOTP, verify.New(logger, svc.OTP, svc.Sessions, svc.Pages))
			r.Post("/checkout/{id}", create.New(logger, svc.Checkout, svc.Pages).ServeHTTP)
			r.Get("/success", result.NewSuccess(logger, svc.Checkout, svc.Pages).ServeHTTP)
			r.Get("/cancel", result.NewCancel(svc.Pages).ServeHTTP)
			r.Get("/account", view.New(logger, svc.Account, svc.Pages).ServeHTTP)
			getPost(r, "/account/edit", edit.New(logger, svc.Account, svc.Pages))
			getPost(r, "/my-data", mydata.New(logger, svc.Account, svc.Pages))
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		user, _ := middlewarectx.UserFromContext(req.Context())
		svc.Pages.RenderError(w, req, user, http.StatusNotFound, "")
	})

	return r
}

func getPost(r chi.Router, pattern string, h http.Handler) {
	r.Method(http.MethodGet, pattern, h)
	r.Method(http.MethodPost, pattern, h)
}
