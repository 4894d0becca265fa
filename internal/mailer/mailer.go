// Package mailer sends outbound notification email over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/bora-tech/crm-api/internal/config"
	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer sends a single message with a plain-text body and an optional
// HTML alternative.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// NewMailer returns an SMTP mailer, or a no-op one when outbound mail
// is disabled in configuration.
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) (Mailer, error) {
	if !cfg.Enabled {
		logger.Info("outbound mail disabled, using no-op mailer")
		return &NopMailer{logger: logger}, nil
	}
	return NewSMTPMailer(cfg, logger)
}

// SMTPMailer delivers mail through a configured SMTP relay
type SMTPMailer struct {
	client    *mail.Client
	fromName  string
	fromEmail string
	logger    *zap.Logger
}

func NewSMTPMailer(cfg *config.MailConfig, logger *zap.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{
		client:    client,
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
		logger:    logger,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.fromEmail); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	if htmlBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info("mail sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// NopMailer drops messages. Used when mail is disabled so callers
// never need a nil check.
type NopMailer struct {
	logger *zap.Logger
}

func (m *NopMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	m.logger.Debug("mail suppressed",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
