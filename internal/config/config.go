package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the dayboard service.
// Environment variables are parsed from the DAYBOARD_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Canonical time and unlock policy
	Timezone   string `envconfig:"TIMEZONE" default:"America/New_York"`
	UnlockHour int    `envconfig:"UNLOCK_HOUR" default:"17"`

	// Cache tiers. SQLite is the local durable tier; Postgres, when a DSN
	// is present, is the shared authoritative tier.
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/dayboard.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Generator Configuration
	GeneratorURL           string `envconfig:"GENERATOR_URL" default:"http://localhost:11434"`
	GeneratorModel         string `envconfig:"GENERATOR_MODEL" default:"llama3.1"`
	GenerateTimeoutSeconds int    `envconfig:"GENERATE_TIMEOUT_SECONDS" default:"60"`
	EnableFallback         bool   `envconfig:"ENABLE_FALLBACK" default:"false"`

	// Sweep Configuration
	SweepIntervalMinutes int      `envconfig:"SWEEP_INTERVAL_MINUTES" default:"60"`
	WarmupScopes         []string `envconfig:"WARMUP_SCOPES" default:""`

	// Health Configuration
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// Validate checks ranges that envconfig cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.UnlockHour < 0 || c.UnlockHour > 23 {
		return fmt.Errorf("invalid UNLOCK_HOUR: %d", c.UnlockHour)
	}
	if c.SQLitePath == "" && c.PostgresDSN == "" {
		return fmt.Errorf("at least one durable tier required: set SQLITE_PATH or POSTGRES_DSN")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: DAYBOARD_HTTP_PORT, DAYBOARD_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("DAYBOARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("timezone", cfg.Timezone).
		Int("unlock_hour", cfg.UnlockHour).
		Str("sqlite_path", cfg.SQLitePath).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("generator_url", cfg.GeneratorURL).
		Str("generator_model", cfg.GeneratorModel).
		Int("sweep_interval_minutes", cfg.SweepIntervalMinutes).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		Timezone:                  "UTC",
		UnlockHour:                17,
		SQLitePath:                "",
		GeneratorURL:              "http://localhost:11434",
		GeneratorModel:            "test-model",
		GenerateTimeoutSeconds:    5,
		SweepIntervalMinutes:      60,
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 5,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
