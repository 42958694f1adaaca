package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"calbot/pkg/validate"
)

type Config struct {
	Token           string `env:"DISCORD_TOKEN"`
	DatabaseURL     string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/calbot?sslmode=disable"`
	DefaultTimeZone string `env:"DEFAULT_TIME_ZONE" envDefault:"Europe/London"`
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	// SessionTimeoutSeconds is how long a conversation may stay idle.
	SessionTimeoutSeconds int           `env:"SESSION_TIMEOUT" envDefault:"600"`
	ReminderInterval      time.Duration `env:"REMINDER_INTERVAL" envDefault:"10s"`
	IOTimeout             time.Duration `env:"IO_TIMEOUT" envDefault:"10s"`
	Environment           string        `env:"ENVIRONMENT" envDefault:"production"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	// .env is optional when the variables come from the environment (Docker, CI).
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSeconds) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: DISCORD_TOKEN is required")
	}

	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
	}

	if !validate.TimeZone(c.DefaultTimeZone) {
		return fmt.Errorf("config: DEFAULT_TIME_ZONE %q is not a known time zone", c.DefaultTimeZone)
	}
	if c.SessionTimeoutSeconds <= 0 {
		return fmt.Errorf("config: SESSION_TIMEOUT must be a positive number of seconds")
	}
	if c.ReminderInterval <= 0 || c.IOTimeout <= 0 {
		return fmt.Errorf("config: REMINDER_INTERVAL and IO_TIMEOUT must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}
