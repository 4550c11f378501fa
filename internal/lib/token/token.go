// Package token генерирует непредсказуемые одноразовые токены.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// DefaultBytes 256 бит энтропии, в hex это 64 символа.
const DefaultBytes = 32

// Generator берёт токены из источника случайных байт.
type Generator struct {
	size   int
	source io.Reader
}

// New возвращает Generator поверх crypto/rand.
func New() *Generator {
	return &Generator{size: DefaultBytes, source: rand.Reader}
}

// NewWithSource для тестов с фиксированным или сбойным источником.
func NewWithSource(size int, source io.Reader) *Generator {
	return &Generator{size: size, source: source}
}

// Generate возвращает новый hex токен.
func (g *Generator) Generate() (string, error) {
	const op = "token.Generate"
	buf := make([]byte, g.size)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}

// Valid сообщает, похожа ли строка на токен New(): ровно 64 символа в нижнем hex.
// Всё остальное не имеет смысла искать в базе.
func Valid(s string) bool {
	if len(s) != DefaultBytes*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
