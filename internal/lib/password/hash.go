// Package password хеширует и проверяет пароли пользователей через bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength максимальная длина пароля для bcrypt.
const MaxLength = 72

// ErrMismatch пароль не совпал с хэшем.
var ErrMismatch = errors.New("password does not match")

// ErrTooLong пароль длиннее MaxLength байт.
var ErrTooLong = errors.New("password is too long")

// dummyHash сравнивается, когда пользователя нет, чтобы отказ
// для известного и неизвестного email занимал одинаковое время.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

// GetHash принимает пароль пользователя и возвращает его bcrypt-хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if len(password) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt-хэш с введённым паролем.
// Возвращает nil при совпадении и ErrMismatch иначе.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CompareDummy тратит одно сравнение bcrypt. Всегда возвращает ErrMismatch.
func CompareDummy(externalPassword string) error {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(externalPassword))
	return ErrMismatch
}
