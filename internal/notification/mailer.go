package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"staffops-backend/config"
)

// SMTPMailer delivers lifecycle emails over SMTP. Every send is bounded by
// the configured timeout: a slow SMTP server degrades to a recorded
// failure, never to a hung fan-out.
type SMTPMailer struct {
	dialer *gomail.Dialer
	cfg    config.MailConfig
}

// NewSMTPMailer creates a mailer from the mail configuration.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
	}
}

// Send delivers one message. Implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.SendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s failed: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s timed out after %s", to, m.cfg.SendTimeout)
	}
}
