package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "cleansmrs-shop"

// SessionClaims claims сессионного токена.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionID возвращает ключ серверной сессии.
func (c *SessionClaims) SessionID() string {
	return c.ID
}

// UserUID возвращает владельца сессии.
func (c *SessionClaims) UserUID() string {
	return c.Subject
}

// GenerateToken создаёт подписанный токен для сессии.
func (j *MakerImpl) GenerateToken(sessionID, userUID string) (string, error) {
	const op = "jwt.GenerateToken"
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userUID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись, срок и издателя токена.
func (j *MakerImpl) ParseToken(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%s: token without session", op)
	}
	return claims, nil
}
