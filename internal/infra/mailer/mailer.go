package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Config struct {
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
}

// Mailer sends transactional email. Callers treat delivery as
// best-effort; a failed receipt never fails the payment flow.
type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.cfg.SMTPHost == "" || m.cfg.From == "" {
		return fmt.Errorf("mailer is not configured")
	}
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
