// Package dataapi получает JWT для доступа к внешнему API данных.
package dataapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
)

// ErrNotConfigured возвращается, если URL API не задан.
var ErrNotConfigured = errors.New("data api is not configured")

// Token учётные данные, которые выдаются подписчику.
type Token struct {
	Token     string
	ExpiresAt time.Time
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Client вызывает GET {url}/login с basic auth.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
}

// NewClient создаёт клиента с таймаутом из конфига.
func NewClient(cfg config.DataAPI) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Login запрашивает новый токен доступа для настроенного сервисного аккаунта.
func (c *Client) Login(ctx context.Context) (*Token, error) {
	const op = "dataapi.Login"
	if c.baseURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/login", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var lr loginResponse
	if err = json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	if lr.Token == "" {
		return nil, fmt.Errorf("%s: empty token in response", op)
	}
	expires, err := parseExpiry(lr.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Token{Token: lr.Token, ExpiresAt: expires}, nil
}

// API отдаёт ISO-8601, иногда без часового пояса; такое время считаем UTC.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func parseExpiry(s string) (time.Time, error) {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable expires_at %q", s)
}
