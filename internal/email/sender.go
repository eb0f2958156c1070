package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/ddhiman-alt/nearpaws/internal/config"
	"github.com/ddhiman-alt/nearpaws/internal/logging"
)

// TemplateHeader names the built-in template a message was rendered from.
// Mock senders key stored messages by it.
const TemplateHeader = "X-NearPaws-Template"

// Sender defines the interface for sending emails.
// The rawMessage parameter should contain the full email message, including headers and body, properly formatted.
type Sender interface {
	Send(ctx context.Context, to []string, subject string, rawMessage []byte) error
}

// SMTPSender implements the Sender interface using Go's net/smtp package.
type SMTPSender struct {
	cfg  *config.Config
	auth smtp.Auth
	addr string
}

// NewSMTPSender returns a LoggingSender when no SMTP host is configured.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		slog.Info("SMTP host not configured, using logging email sender")
		return &LoggingSender{cfg: cfg}
	}

	auth := smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost)
	return &SMTPSender{
		cfg:  cfg,
		auth: auth,
		addr: fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if err := smtp.SendMail(s.addr, s.auth, s.cfg.SmtpFromAddress, to, rawMessage); err != nil {
		slog.ErrorContext(ctx, "failed to send email via SMTP", "to", to, logging.Err(err))
		return fmt.Errorf("smtp error: %w", err)
	}
	slog.InfoContext(ctx, "email sent via SMTP", "to", to, "subject", subject)
	return nil
}

// LoggingSender writes messages to the log instead of delivering them.
type LoggingSender struct {
	cfg *config.Config
}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	slog.InfoContext(ctx, "email (logged, not sent)",
		"to", to,
		"from", s.cfg.SmtpFromAddress,
		"subject", subject,
		"message", string(rawMessage),
	)
	return nil
}
