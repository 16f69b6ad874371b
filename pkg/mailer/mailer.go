package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/S3lorm/internship-robot-sub000/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
	enabled  bool
}

// NewSMTP builds a mailer from the mail configuration. When disabled, Send is
// a no-op that reports success so callers never block on delivery.
func NewSMTP(cfg config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:     auth,
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
		enabled:  cfg.Enabled,
	}
}

// Send delivers a single message. The text part is used as a fallback when no
// HTML body is provided.
func (m *SMTPMailer) Send(msg Message) error {
	if !m.enabled {
		return nil
	}
	if msg.To == "" {
		return fmt.Errorf("recipient required")
	}

	body := msg.HTML
	contentType := "text/html; charset=UTF-8"
	if body == "" {
		body = msg.Text
		contentType = "text/plain; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	b.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
