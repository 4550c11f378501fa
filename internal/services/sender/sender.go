// Package services доставляет письма из очередей RabbitMQ по SMTP.
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/sl"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/lib/smtp"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/models"
	"github.com/magabrotheeeer/cleansmrs-shop/internal/rabbitmq"
)

const (
	activationSubject = "CleanSMRs: Activate your account"
	expirySubject     = "CleanSMRs: Your data subscription ends soon"
)

var (
	activationTmpl = template.Must(template.New("activation").Parse(`Hello {{.Name}},

Thank you for registering with CleanSMRs.
Please activate your account by following the link below:

{{.BaseURL}}/activate/{{.Token}}

If you did not create an account, you can ignore this email.
`))

	expiryTmpl = template.Must(template.New("expiry").Parse(`Hello {{.Name}},

Your {{.PlanName}} data access subscription ends on {{.EndDate.Format "2 January 2006 15:04 MST"}}.
After that date the data API will no longer issue tokens for your account.

You can purchase a new subscription on the products page.
`))
)

// SenderService формирует письма и отправляет их через SMTP.
type SenderService struct {
	transport smtp.Dialer
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.Dialer, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendActivation обрабатывает сообщение из очереди email.activation.
func (s *SenderService) SendActivation(body []byte) error {
	const op = "services.sender.SendActivation"

	var msg models.ActivationEmail
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	if msg.Email == "" || msg.Token == "" {
		return fmt.Errorf("%s: %w: missing email or token", op, rabbitmq.ErrPermanent)
	}

	text, err := render(activationTmpl, msg)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	if err := s.sendEmail([]string{msg.Email}, activationSubject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendExpiryReminder обрабатывает сообщение из очереди email.expiry.
func (s *SenderService) SendExpiryReminder(body []byte) error {
	const op = "services.sender.SendExpiryReminder"

	var msg models.ExpiryReminder
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	if msg.Email == "" {
		return fmt.Errorf("%s: %w: missing email", op, rabbitmq.ErrPermanent)
	}

	text, err := render(expiryTmpl, msg)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrPermanent, err)
	}
	if err := s.sendEmail([]string{msg.Email}, expirySubject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Dial()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
