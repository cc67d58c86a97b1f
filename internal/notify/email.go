package notify

import (
	"context"
	"errors"
	"fmt"

	"bachatlist/internal/models"

	"gopkg.in/gomail.v2"
)

// Dialer sends composed e-mails. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email delivers notifications over SMTP to the address in the channel target.
type Email struct {
	dialer Dialer
	from   string
}

func NewEmail(dialer Dialer, from string) *Email {
	return &Email{dialer: dialer, from: from}
}

// NewSMTPEmail builds an Email sender for an SMTP server.
func NewSMTPEmail(host string, port int, username, password, from string) *Email {
	return NewEmail(gomail.NewDialer(host, port, username, password), from)
}

// Send mails msg to the channel target.
func (e *Email) Send(_ context.Context, ch models.Channel, msg Message) error {
	const op = "notify.Email.Send"

	if ch.Target == "" {
		return fmt.Errorf("%s: %w", op, errors.New("recipient address is not configured"))
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", ch.Target)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
