// Package services реализует регистрацию, вход и активацию аккаунтов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/password"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/token"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/metrics"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/rabbitmq"
)

// UserRepository описывает контракт хранилища пользователей и токенов.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (string, error)
	CreateUserWithToken(ctx context.Context, user *models.User, token string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ActivateUser(ctx context.Context, token string, at time.Time) (string, error)
}

// TokenGenerator выдаёт токены активации.
type TokenGenerator interface {
	Generate() (string, error)
}

// Publisher ставит письма в очередь.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// RegisterInput поля формы регистрации после валидации.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Address    string
	City       string
	Country    string
	PostalCode string
	// BaseURL используется в ссылке активации, например "https://shop.example.com".
	BaseURL string
}

// AuthService отвечает за регистрацию, вход и активацию.
type AuthService struct {
	users        UserRepository
	tokens       TokenGenerator
	publisher    Publisher
	emailEnabled bool
	log          *slog.Logger
	now          func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
// При выключенной почте publisher может быть nil: пользователи активируются сразу.
func NewAuthService(users UserRepository, tokens TokenGenerator, publisher Publisher, emailEnabled bool, log *slog.Logger) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		publisher:    publisher,
		emailEnabled: emailEnabled,
		log:          log,
		now:          time.Now,
	}
}

// Register создаёт пользователя в группе Site User. Если почта включена,
// пользователь неактивен до перехода по ссылке из письма; пользователь и
// токен сохраняются одной транзакцией. Ошибка отправки письма только логируется.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		Email:        models.NormalizeEmail(in.Email),
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Address:      in.Address,
		City:         in.City,
		Country:      in.Country,
		PostalCode:   in.PostalCode,
		IsActive:     !s.emailEnabled,
		Groups:       []string{models.GroupSiteUser},
	}

	if !s.emailEnabled {
		if _, err = s.users.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		metrics.IncRegistration()
		return user, nil
	}

	activation, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.users.CreateUserWithToken(ctx, user, activation); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.IncRegistration()

	msg := models.ActivationEmail{
		Email:   user.Email,
		Name:    user.FullName(),
		BaseURL: in.BaseURL,
		Token:   activation,
	}
	err = s.publisher.Publish(ctx, rabbitmq.RoutingActivation, msg)
	metrics.IncEmailQueued("activation", err)
	if err != nil {
		s.log.Error("failed to queue activation email",
			slog.String("op", op), slog.String("user_uid", user.UUID), sl.Err(err))
	}
	return user, nil
}

// Authenticate проверяет email и пароль. Неизвестный email, неверный пароль
// и неактивный аккаунт неразличимы для вызывающего.
func (s *AuthService) Authenticate(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		_ = password.CompareDummy(rawPassword)
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	return user, nil
}

// Activate погашает токен и активирует владельца. Повтор и мусорный токен
// дают ErrInvalidToken; мусор до хранилища не доходит.
func (s *AuthService) Activate(ctx context.Context, activation string) error {
	const op = "services.auth.Activate"

	if !token.Valid(activation) {
		metrics.IncActivation(false)
		return fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}
	userUID, err := s.users.ActivateUser(ctx, activation, s.now().UTC())
	metrics.IncActivation(err == nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("account activated", slog.String("op", op), slog.String("user_uid", userUID))
	return nil
}
