// Package smtp отправляет письма через SMTP-сервер с STARTTLS.
package smtp

import "io"

// Session одна открытая SMTP-сессия; *smtp.Client подходит под него через обёртку.
type Session interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает аутентифицированные сессии и знает адрес отправителя.
type Dialer interface {
	Dial() (Session, error)
	From() string
}
