package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	mail "github.com/wneessen/go-mail"
)

// Config represents the SMTP configuration for email sending.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	Timeout     time.Duration // per-delivery bound; zero means 15s
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("SMTP port must be between 1 and 65535")
	}
	if c.FromAddress == "" {
		return errors.New("from address is required")
	}
	return nil
}

// ServerAddress returns the SMTP server address in the format "host:port".
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg    Config
	client *mail.Client
}

// NewSMTPMailer validates the config and builds the SMTP client.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(cfg.Timeout),
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
		return nil, fmt.Errorf("smtp client %s: %w", cfg.ServerAddress(), err)
	}
	return &SMTPMailer{cfg: cfg, client: client}, nil
}

// Send delivers one HTML message. The context bounds the whole dial-and-send;
// a timeout surfaces as a plain delivery error, never a retry.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromAddress); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send to %q: %w", to, err)
	}
	return nil
}

// HealthPing verifies the SMTP relay is reachable.
func (m *SMTPMailer) HealthPing(ctx context.Context) error {
	if err := m.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("dial %s: %w", m.cfg.ServerAddress(), err)
	}
	return m.client.Close()
}
