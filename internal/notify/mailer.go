package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/helpdesk-hq/helpdesk-service/internal/config"
)

// Email is an outbound HTML notification.
type Email struct {
	To      string
	From    string
	Subject string
	HTML    string
}

// Mailer attempts delivery of a single email and reports the outcome.
// Callers treat failures as best-effort; they are logged, never retried.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
}

// NewSMTPMailer builds a mailer from notification config.
func NewSMTPMailer(cfg config.NotificationConfig) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
	}
}

// Send delivers the email, failing fast when SMTP settings are absent.
func (m *SMTPMailer) Send(_ context.Context, email Email) error {
	if m.host == "" || m.user == "" || m.pass == "" {
		return errors.New("smtp not configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", email.From)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.HTML)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return smtp.SendMail(addr, auth, email.From, []string{email.To}, []byte(b.String()))
}
