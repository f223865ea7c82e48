package notify

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/HakiMohamed/LocationsGuard/config"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
)

// SMTPMailer delivers the transactional mails over SMTP. When the mail host
// is not configured it degrades to logging and skipping, the same way the
// original deployment behaves in development.
type SMTPMailer struct {
	client      *gomail.Client
	fromName    string
	fromAddress string
	appURL      string
	logger      *slog.Logger
}

func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) (*SMTPMailer, error) {
	m := &SMTPMailer{
		fromName:    cfg.MailFromName,
		fromAddress: cfg.MailFromAddress,
		appURL:      cfg.AppURL,
		logger:      logger,
	}

	if cfg.MailHost == "" {
		logger.Warn("mail host not configured, mail delivery disabled")
		return m, nil
	}

	client, err := gomail.NewClient(cfg.MailHost,
		gomail.WithPort(cfg.MailPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.MailUsername),
		gomail.WithPassword(cfg.MailPassword),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build mail client: %w", err)
	}

	m.client = client

	return m, nil
}

func (m *SMTPMailer) SendEmailVerification(ctx context.Context, user *domain.User, token string) error {
	verificationURL := fmt.Sprintf("%s/auth/verify-email?token=%s", m.appURL, token)

	return m.send(ctx, user.Email, "Verify your email address",
		verificationEmailBody(user.FirstName, verificationURL))
}

func (m *SMTPMailer) SendPasswordResetLink(ctx context.Context, user *domain.User, token string) error {
	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", m.appURL, token)

	return m.send(ctx, user.Email, "Reset your password",
		passwordResetBody(user.FirstName, resetURL))
}

func (m *SMTPMailer) SendNewDeviceNotification(ctx context.Context, user *domain.User, device *domain.Device) error {
	return m.send(ctx, user.Email, "New device login",
		newDeviceBody(user.FirstName, device))
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if m.client == nil {
		m.logger.Warn("mail delivery skipped, no client configured", "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.fromAddress); err != nil {
		return fmt.Errorf("invalid mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
