package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailDisabled is returned when SMTP_HOST is not configured.
var ErrMailDisabled = errors.New("mailer: SMTP is not configured")

// Mailer wraps SMTP configuration for sending receipts with PDF attachments.
// Every send goes through the circuit breaker.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	from     string
	cb       *CircuitBreaker
	send     func(e *email.Email, addr string, a smtp.Auth) error
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     fmt.Sprintf("%s <%s>", cfg.StoreName, cfg.SMTPUser),
		cb:       cb,
		send:     func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

func (m *Mailer) Breaker() *CircuitBreaker { return m.cb }

// SendReceipt sends a PDF receipt to the customer email.
// Relay failures and an open breaker are tagged as network errors so the
// caller schedules a retry.
func (m *Mailer) SendReceipt(to, subject, body, pdfPath string) error {
	if m.host == "" {
		return ErrMailDisabled
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	err := m.cb.Execute(func() error { return m.send(e, m.addr, auth) })
	if err != nil {
		return apierror.Network("mail relay unavailable", err)
	}
	return nil
}
