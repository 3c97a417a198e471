package config

import (
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EmailMode selects how accepted briefs are dispatched.
type EmailMode string

const (
	// EmailModeDevelopment logs submissions instead of sending email.
	EmailModeDevelopment EmailMode = "development"
	// EmailModeLive sends email through Mailgun.
	EmailModeLive EmailMode = "live"
)

// Config holds all application configuration.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL   string `env:"DATABASE_URL"`
	AdminAPIToken string `env:"ADMIN_API_TOKEN"`

	Email EmailConfig
	Brief BriefConfig

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST" envDefault:"5"`
	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the socket address is the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// EmailConfig holds the Mailgun credentials and sender identity.
type EmailConfig struct {
	// MailgunAPIKey gates live delivery; empty means development mode
	MailgunAPIKey string `env:"MAILGUN_API_KEY"`
	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	// MailgunAPIBase overrides the API host, e.g. the EU region
	MailgunAPIBase string        `env:"MAILGUN_API_BASE"`
	FromEmail      string        `env:"EMAIL_FROM_ADDRESS" envDefault:"hello@northlight.studio"`
	FromName       string        `env:"EMAIL_FROM_NAME" envDefault:"Northlight Studio"`
	SendTimeout    time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"30s"`
}

// BriefConfig holds the fixed values used when formatting brief emails.
type BriefConfig struct {
	NotifyTo      string `env:"BRIEF_NOTIFY_TO" envDefault:"projects@northlight.studio"`
	SchedulingURL string `env:"SCHEDULING_URL" envDefault:"https://cal.com/northlight/discovery-call"`
	Timezone      string `env:"BRIEF_TIMEZONE" envDefault:"America/New_York"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks combinations env.Parse cannot express.
func (c *Config) Validate() error {
	if c.EmailMode() == EmailModeLive && c.Email.MailgunDomain == "" {
		return fmt.Errorf("MAILGUN_DOMAIN is required when MAILGUN_API_KEY is set")
	}
	if c.Brief.NotifyTo == "" {
		return fmt.Errorf("BRIEF_NOTIFY_TO is required")
	}
	if _, err := time.LoadLocation(c.Brief.Timezone); err != nil {
		return fmt.Errorf("invalid BRIEF_TIMEZONE %q: %w", c.Brief.Timezone, err)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if !isIPOrCIDR(proxy) {
			return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy)
		}
	}
	return nil
}

func isIPOrCIDR(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(s)
	return err == nil
}

// EmailMode reports whether live delivery is configured.
func (c *Config) EmailMode() EmailMode {
	if c.Email.MailgunAPIKey == "" {
		return EmailModeDevelopment
	}
	return EmailModeLive
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// HasDatabase reports whether the lead archive is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// Location returns the timezone used for received-at timestamps.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Brief.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	if len(c.Port) > 0 && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}
