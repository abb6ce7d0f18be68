package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the summary service.
// Environment variables are parsed from the MEETBRIEF_ prefix,
// e.g. MEETBRIEF_HTTP_PORT, MEETBRIEF_OPENAI_API_KEY.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: sqlite, postgres
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage Configuration
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/meetbrief.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Generation provider (OpenAI-compatible chat completion endpoint)
	OpenAIAPIKey     string  `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL    string  `envconfig:"OPENAI_BASE_URL" default:""`
	GenModel         string  `envconfig:"GEN_MODEL" default:"gpt-4o-mini"`
	GenTemperature   float32 `envconfig:"GEN_TEMPERATURE" default:"0.3"`
	GenTimeoutSecond int     `envconfig:"GEN_TIMEOUT_SECONDS" default:"60"`

	// Mail transport (SMTP)
	SMTPHost           string `envconfig:"SMTP_HOST" default:""`
	SMTPPort           int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername       string `envconfig:"SMTP_USERNAME" default:""`
	SMTPPassword       string `envconfig:"SMTP_PASSWORD" default:""`
	MailFromAddress    string `envconfig:"MAIL_FROM_ADDRESS" default:""`
	MailFromName       string `envconfig:"MAIL_FROM_NAME" default:"meetbrief"`
	MailTimeoutSeconds int    `envconfig:"MAIL_TIMEOUT_SECONDS" default:"15"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to
// "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH required for sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN required for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MEETBRIEF", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
