// Package jwt подписывает и проверяет токены сессионной cookie.
//
// Токен несёт идентификатор серверной сессии (jti) и UID пользователя (sub).
// Само состояние сессии хранится в redis, токен лишь защищает его ключ от подделки.
package jwt

import (
	"time"
)

// Maker описывает генерацию и разбор сессионных токенов.
type Maker interface {
	GenerateToken(sessionID, userUID string) (string, error)
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl с ключом и временем жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
