// Package metrics объявляет prometheus-метрики магазина.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_webhook_events_total",
			Help: "Payment webhook deliveries by outcome (processed/duplicate/unpaid/ignored/rejected/failed).",
		},
		[]string{"outcome"},
	)

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Orders materialised from paid checkout sessions by product type.",
		},
		[]string{"product_type"},
	)

	otpChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_otp_checks_total",
			Help: "TOTP code checks by result.",
		},
		[]string{"result"},
	)

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_registrations_total",
			Help: "Successful registrations.",
		},
	)

	activations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_activations_total",
			Help: "Account activation attempts by result.",
		},
		[]string{"result"},
	)

	emailsQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_emails_queued_total",
			Help: "Emails handed to the broker by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

// MustRegister регистрирует коллекторы в реестре по умолчанию. Повторный вызов безопасен.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration, webhookEvents, ordersCreated,
			otpChecks, registrations, activations, emailsQueued,
		)
	})
}

// ObserveHTTP учитывает один обслуженный запрос.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Исходы вебхука.
const (
	WebhookProcessed = "processed"
	WebhookDuplicate = "duplicate"
	WebhookUnpaid    = "unpaid"
	WebhookIgnored   = "ignored"
	WebhookRejected  = "rejected"
	WebhookFailed    = "failed"
)

func IncWebhook(outcome string) {
	webhookEvents.WithLabelValues(outcome).Inc()
}

func IncOrder(productType string) {
	ordersCreated.WithLabelValues(productType).Inc()
}

func IncOTPCheck(ok bool) {
	result := "invalid"
	if ok {
		result = "valid"
	}
	otpChecks.WithLabelValues(result).Inc()
}

func IncRegistration() {
	registrations.Inc()
}

func IncActivation(ok bool) {
	result := "invalid_token"
	if ok {
		result = "activated"
	}
	activations.WithLabelValues(result).Inc()
}

func IncEmailQueued(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	emailsQueued.WithLabelValues(kind, result).Inc()
}
