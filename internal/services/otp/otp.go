// Package services управляет TOTP-секретами пользователей и проверкой кодов.
package services

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/metrics"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
)

const (
	period    = 30
	skew      = 1
	qrSize    = 200
	codeDigit = 6
)

// Repository описывает хранение OTP-записей.
type Repository interface {
	GetOTP(ctx context.Context, userUID string) (*models.UserOTP, error)
	GetOrCreateOTP(ctx context.Context, userUID, secret string) (*models.UserOTP, error)
	MarkOTPValidated(ctx context.Context, userUID string, at time.Time) (bool, error)
}

// OTPService выдаёт секреты, строит QR-код и проверяет коды.
type OTPService struct {
	repo   Repository
	issuer string
	now    func() time.Time
}

// NewOTPService создаёт сервис. now == nil означает time.Now.
func NewOTPService(repo Repository, issuer string, now func() time.Time) *OTPService {
	if now == nil {
		now = time.Now
	}
	return &OTPService{repo: repo, issuer: issuer, now: now}
}

// Get возвращает запись пользователя или models.ErrNotFound.
func (s *OTPService) Get(ctx context.Context, userUID string) (*models.UserOTP, error) {
	const op = "services.otp.Get"
	rec, err := s.repo.GetOTP(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// GetOrCreate возвращает существующую запись или создаёт новую со свежим секретом.
func (s *OTPService) GetOrCreate(ctx context.Context, userUID, account string) (*models.UserOTP, error) {
	const op = "services.otp.GetOrCreate"
	rec, err := s.repo.GetOTP(ctx, userUID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: account,
		Period:      period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rec, err = s.repo.GetOrCreateOTP(ctx, userUID, key.Secret())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// key восстанавливает otp.Key из сохранённого base32-секрета.
func (s *OTPService) key(secret, account string) (*otp.Key, error) {
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).
		DecodeString(strings.ToUpper(strings.TrimRight(secret, "=")))
	if err != nil {
		return nil, fmt.Errorf("malformed secret: %w", err)
	}
	return totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: account,
		Period:      period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		Secret:      raw,
	})
}

// ProvisioningURI возвращает стандартный otpauth:// URI для приложений-аутентификаторов.
func (s *OTPService) ProvisioningURI(secret, account string) (string, error) {
	const op = "services.otp.ProvisioningURI"
	key, err := s.key(secret, account)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key.URL(), nil
}

// ProvisioningImage отдаёт QR-код с URI как PNG data URI.
// Побочных эффектов нет, для одного секрета и аккаунта результат один и тот же.
func (s *OTPService) ProvisioningImage(secret, account string) (string, error) {
	const op = "services.otp.ProvisioningImage"
	key, err := s.key(secret, account)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Validate проверяет код в текущем и соседних 30-секундных окнах.
// При первом успехе выставляет validated_at, повторные успехи запись не меняют.
// Ошибка возвращается только при сбое хранилища.
func (s *OTPService) Validate(ctx context.Context, rec *models.UserOTP, code string) (bool, error) {
	const op = "services.otp.Validate"
	if !wellFormed(code) {
		metrics.IncOTPCheck(false)
		return false, nil
	}

	now := s.now().UTC()
	ok, err := totp.ValidateCustom(code, rec.Secret, now, totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	metrics.IncOTPCheck(ok && err == nil)
	if err != nil || !ok {
		return false, nil
	}

	if rec.Validated() {
		return true, nil
	}
	changed, err := s.repo.MarkOTPValidated(ctx, rec.UserUID, now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if changed {
		rec.ValidatedAt = &now
	}
	return true, nil
}

func wellFormed(code string) bool {
	if len(code) != codeDigit {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
