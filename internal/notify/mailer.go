// Package notify delivers the consolidated report by email over
// authenticated SMTP. Delivery failure is a non-fatal error surfaced to the
// caller; the in-memory result set is never affected.
package notify

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when SMTP settings are incomplete.
var ErrNotConfigured = errors.New("notify: SMTP not configured")

// Config holds SMTP submission settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends one-shot plain-text reports.
type Mailer struct {
	cfg  Config
	send func(*gomail.Message) error
}

// New creates a mailer. Returns ErrNotConfigured when host, port, or sender
// are missing.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return nil, ErrNotConfigured
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{
		cfg: cfg,
		send: func(msg *gomail.Message) error {
			return dialer.DialAndSend(msg)
		},
	}, nil
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send report to %s: %w", to, err)
	}
	return nil
}
