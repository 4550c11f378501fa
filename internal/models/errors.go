package models

import (
	"errors"
	"fmt"
)

// Доменные ошибки. Обработчики сопоставляют их с HTTP-статусами через errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidToken         = errors.New("invalid activation token")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrEmailTaken           = errors.New("email is already in use")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPaymentProvider      = errors.New("payment provider error")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrAlreadyExists        = errors.New("already exists")
)

// ValidationError возвращают валидаторы перед записью.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation сообщает, оборачивает ли err *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
