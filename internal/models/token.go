package models

import "time"

// ActivationToken подтверждает владение email, указанным при регистрации.
// После установки ActivatedAt токен больше ничего не делает.
type ActivationToken struct {
	Token       string
	UserUID     string
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// Used сообщает, использован ли уже токен.
func (t *ActivationToken) Used() bool {
	return t.ActivatedAt != nil
}

// UserOTP секрет TOTP пользователя. После создания секрет не меняется.
type UserOTP struct {
	UserUID     string
	Secret      string
	CreatedAt   time.Time
	ValidatedAt *time.Time
}

// Validated сообщает, принят ли уже первый код.
func (o *UserOTP) Validated() bool {
	return o.ValidatedAt != nil
}
