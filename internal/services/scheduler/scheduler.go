// Package services ищет подписки на данные, которые скоро закончатся,
// и ставит письма-напоминания в очередь.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/metrics"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/rabbitmq"
)

// SubscriptionRepository отдаёт подписки, заканчивающиеся в окне (from, to].
type SubscriptionRepository interface {
	ListExpiringSubscriptions(ctx context.Context, from, to time.Time) ([]models.ExpiryReminder, error)
}

// Publisher публикует сообщения в exchange уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SchedulerService периодически публикует напоминания об окончании подписки.
type SchedulerService struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
	interval  time.Duration
	lookahead time.Duration
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
// Каждый запуск покрывает окно длиной interval, сдвинутое на lookahead вперёд,
// поэтому соседние запуски не пересекаются и одна подписка попадает в одно окно.
func NewSchedulerService(repo SubscriptionRepository, publisher Publisher, interval, lookahead time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		interval:  interval,
		lookahead: lookahead,
		now:       time.Now,
	}
}

// Run выполняет проверку сразу и затем по тикеру, пока ctx не отменён.
func (s *SchedulerService) Run(ctx context.Context) {
	from := s.now().UTC().Add(s.lookahead)
	from = s.runOnce(ctx, from.Add(-s.interval), from)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			from = s.runOnce(ctx, from, s.now().UTC().Add(s.lookahead))
		}
	}
}

// RemindExpiring публикует напоминание для каждой подписки, истекающей в (from, to],
// и возвращает число поставленных в очередь.
func (s *SchedulerService) RemindExpiring(ctx context.Context, from, to time.Time) (int, error) {
	const op = "services.scheduler.RemindExpiring"
	log := s.log.With(slog.String("op", op))

	reminders, err := s.repo.ListExpiringSubscriptions(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(reminders) == 0 {
		log.Info("no expiring subscriptions found")
		return 0, nil
	}
	log.Info("found expiring subscriptions", slog.Int("count", len(reminders)))

	queued := 0
	for _, r := range reminders {
		err := s.publisher.Publish(ctx, rabbitmq.RoutingExpiry, r)
		metrics.IncEmailQueued(rabbitmq.RoutingExpiry, err)
		if err != nil {
			log.Error("failed to publish reminder", slog.String("email", r.Email), sl.Err(err))
			continue
		}
		queued++
	}
	return queued, nil
}

// runOnce возвращает конец обработанного окна, или from, если запуск не удался,
// чтобы следующий тик повторил то же окно.
func (s *SchedulerService) runOnce(ctx context.Context, from, to time.Time) time.Time {
	if !to.After(from) {
		return from
	}
	if _, err := s.RemindExpiring(ctx, from, to); err != nil {
		s.log.Error("failed to remind expiring subscriptions", sl.Err(err))
		return from
	}
	return to
}
