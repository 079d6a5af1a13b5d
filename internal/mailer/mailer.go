// Package mailer sends best-effort invoice email. Delivery failure never
// rolls back the invoice; callers log and move on.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/zervos/desk/internal/credential"
	"github.com/zervos/desk/internal/model"
)

// Mailer delivers invoice email.
type Mailer interface {
	SendInvoice(inv model.Invoice) error
}

// SMTPMailer sends invoice email over SMTP with the password loaded from
// the system keyring.
type SMTPMailer struct {
	cfg    model.MailConfig
	logger *zap.Logger
}

// NewSMTP creates a mailer from the mail configuration.
func NewSMTP(cfg model.MailConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// SendInvoice builds a MIME message for the invoice and submits it. A
// disabled mail configuration is a silent no-op.
func (m *SMTPMailer) SendInvoice(inv model.Invoice) error {
	if !m.cfg.Enabled {
		return nil
	}
	if inv.CustomerEmail == "" {
		return errors.New("invoice has no customer email")
	}

	msg, err := buildMessage(m.cfg.From, inv)
	if err != nil {
		return fmt.Errorf("building invoice email: %w", err)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		password, err := credential.SMTPPassword()
		if err != nil {
			m.logger.Warn("loading smtp password failed", zap.Error(err))
		}
		auth = smtp.PlainAuth("", m.cfg.Username, password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{inv.CustomerEmail}, msg); err != nil {
		return fmt.Errorf("sending invoice %s to %s: %w", inv.Number, inv.CustomerEmail, err)
	}

	return nil
}

// buildMessage renders the invoice as a single-part plain text message.
func buildMessage(from string, inv model.Invoice) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: "Zervos", Address: from}})
	h.SetAddressList("To", []*mail.Address{{Name: inv.CustomerName, Address: inv.CustomerEmail}})
	h.SetSubject(fmt.Sprintf("Invoice %s", inv.Number))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nInvoice %s for %.2f %s is now available.\n\n%s\n\nThank you,\nZervos\n",
		inv.CustomerName, inv.Number, inv.Amount, inv.Currency, inv.Notes,
	)
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing message: %w", err)
	}

	return buf.Bytes(), nil
}
