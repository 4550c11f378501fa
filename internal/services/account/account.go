// Package services собирает данные личного кабинета и доступ к API данных.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/dataapi"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

// Repository хранилище пользователей, заказов и подписок.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userUID string, p models.Profile) error
	LatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	ListOrdersByUser(ctx context.Context, userUID string) ([]*models.Order, error)
}

// DataAPI выдаёт токены доступа к внешнему API данных.
type DataAPI interface {
	Login(ctx context.Context) (*dataapi.Token, error)
}

// Overview содержимое страницы аккаунта.
type Overview struct {
	User         *models.User
	Subscription *models.Subscription
	Orders       []*models.Order
}

// AccountService обслуживает страницы аккаунта и my-data.
type AccountService struct {
	repo Repository
	api  DataAPI
	log  *slog.Logger
	now  func() time.Time
}

// NewAccountService создаёт сервис аккаунта.
func NewAccountService(repo Repository, api DataAPI, log *slog.Logger) *AccountService {
	return &AccountService{repo: repo, api: api, log: log, now: time.Now}
}

// Overview возвращает пользователя, его последнюю подписку (nil, если нет) и заказы от новых к старым.
func (s *AccountService) Overview(ctx context.Context, userUID string) (*Overview, error) {
	const op = "services.account.Overview"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub, err := s.repo.LatestSubscription(ctx, userUID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	orders, err := s.repo.ListOrdersByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Overview{User: user, Subscription: sub, Orders: orders}, nil
}

// Profile возвращает пользователя для формы редактирования.
func (s *AccountService) Profile(ctx context.Context, userUID string) (*models.User, error) {
	const op = "services.account.Profile"
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile сохраняет редактируемые поля профиля.
func (s *AccountService) UpdateProfile(ctx context.Context, userUID string, p models.Profile) error {
	const op = "services.account.UpdateProfile"
	if err := s.repo.UpdateProfile(ctx, userUID, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("op", op), slog.String("user_uid", userUID))
	return nil
}

// ActiveSubscription возвращает последнюю подписку, если она ещё не закончилась,
// иначе models.ErrNoActiveSubscription.
func (s *AccountService) ActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "services.account.ActiveSubscription"

	sub, err := s.repo.LatestSubscription(ctx, userUID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNoActiveSubscription)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !sub.ActiveAt(s.now()) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNoActiveSubscription)
	}
	return sub, nil
}

// RequestDataToken проверяет подписку и получает токен у API данных.
func (s *AccountService) RequestDataToken(ctx context.Context, userUID string) (*dataapi.Token, error) {
	const op = "services.account.RequestDataToken"

	if _, err := s.ActiveSubscription(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tok, err := s.api.Login(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("data api token issued", slog.String("op", op), slog.String("user_uid", userUID))
	return tok, nil
}
