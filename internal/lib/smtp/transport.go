package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/config"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// Transport подключается к SMTP серверу из конфига через STARTTLS.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

type session struct {
	c *smtp.Client
}

func (s session) Mail(from string) error       { return s.c.Mail(from) }
func (s session) Rcpt(to string) error         { return s.c.Rcpt(to) }
func (s session) Data() (io.WriteCloser, error) { return s.c.Data() }
func (s session) Quit() error                  { return s.c.Quit() }
func (s session) Close() error                 { return s.c.Close() }

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log.With(slog.String("component", "smtp"))}
}

// Dial подключается, требует STARTTLS и авторизуется, если задан пользователь.
func (t *Transport) Dial() (Session, error) {
	const op = "smtp.Dial"
	addr := net.JoinHostPort(t.cfg.Host, t.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: new client: %w", op, err)
	}

	fail := func(msg string, err error) (Session, error) {
		t.log.Error(msg, sl.Err(err))
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %s: %w", op, msg, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fail("starttls unsupported", fmt.Errorf("server %s does not advertise STARTTLS", addr))
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fail("failed to start TLS", err)
	}

	if t.cfg.User != "" {
		auth := smtp.PlainAuth("", t.cfg.User, t.cfg.Password, t.cfg.Host)
		if err = client.Auth(auth); err != nil {
			return fail("smtp auth failed", err)
		}
	}

	return session{c: client}, nil
}

// From возвращает адрес отправителя.
func (t *Transport) From() string {
	return t.cfg.User
}
