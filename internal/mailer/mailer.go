// Package mailer delivers transactional mail (activation and password-reset
// links). Delivery is best-effort: callers surface failures as a one-shot
// warning and never retry or queue.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"bookmarks/internal/config"
	"bookmarks/internal/middleware"
)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// New returns an SMTP mailer when SMTP_HOST is configured, otherwise a
// logging mailer that writes the message to the log (development behavior).
func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{logger: middleware.Logger}
	}
	return &SMTPMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		host: cfg.SMTPHost,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	addr string
	host string
	user string
	pass string
	from string
}

// Send delivers the message via SMTP with PLAIN auth when credentials are set.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes outgoing mail to the structured log instead of sending it.
type LogMailer struct {
	logger *slog.Logger
}

// Send logs the message.
func (m *LogMailer) Send(to, subject, body string) error {
	m.logger.Info("outgoing mail (log-only delivery)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
