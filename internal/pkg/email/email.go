package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether credentials are configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// SMTPSender sends mail through a gomail dialer.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a gomail backed sender
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send dials the SMTP server and sends one message
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogSender only logs outgoing mail. Used when SMTP credentials are not configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a sender that writes to the log instead of the network
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, _ string) error {
	s.logger.Warn().
		Str("to", to).
		Str("subject", subject).
		Msg("SMTP credentials not configured - email not sent")
	return nil
}

// NewSender picks the SMTP sender when credentials exist and the log sender otherwise.
func NewSender(cfg SMTPConfig, logger zerolog.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return NewLogSender(logger)
}
