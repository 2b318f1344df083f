// Package config loads and validates app config from env and an optional
// .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SessionTTLMinutes is the sliding idle timeout for regular sessions.
	SessionTTLMinutes int `mapstructure:"SESSION_TTL_MINUTES"`
	// KioskSessionTTLMinutes is the sliding idle timeout for kiosk sessions.
	KioskSessionTTLMinutes int `mapstructure:"KIOSK_SESSION_TTL_MINUTES"`
	// SessionCookieName is the cookie carrying the opaque session id.
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	// JanitorInterval is the period between expired-session sweeps (e.g. "1h").
	JanitorInterval string `mapstructure:"JANITOR_INTERVAL"`
	// RuleCacheTTL bounds staleness of cached per-role rule sets (e.g. "30s").
	RuleCacheTTL string `mapstructure:"RULE_CACHE_TTL"`
	// BootstrapSecretHash is the bcrypt hash of the one-time setup secret.
	// Empty disables the bootstrap endpoint entirely.
	BootstrapSecretHash string `mapstructure:"BOOTSTRAP_SECRET_HASH"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zap level (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// OTLPEndpoint is the OTLP/gRPC collector for traces; empty disables tracing.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`

	// Audit stream (optional). When Kafka brokers are set, audit events are
	// shipped to Kafka in addition to Postgres.
	// AuditKafkaBrokers is a comma-separated broker list (e.g. "localhost:9092").
	AuditKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events.
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the audit worker to push events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_TTL_MINUTES", 1440) // 24h idle window
	v.SetDefault("KIOSK_SESSION_TTL_MINUTES", 10080)
	v.SetDefault("SESSION_COOKIE_NAME", "homehold_session")
	v.SetDefault("JANITOR_INTERVAL", "1h")
	v.SetDefault("RULE_CACHE_TTL", "30s")
	v.SetDefault("BOOTSTRAP_SECRET_HASH", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "homehold-audit")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "homehold-audit-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.SessionTTLMinutes <= 0 {
		return nil, errors.New("config: SESSION_TTL_MINUTES must be positive")
	}
	if cfg.KioskSessionTTLMinutes <= 0 {
		return nil, errors.New("config: KIOSK_SESSION_TTL_MINUTES must be positive")
	}
	if cfg.SessionCookieName == "" {
		return nil, errors.New("config: SESSION_COOKIE_NAME must be set")
	}

	return &cfg, nil
}

// SessionTTL returns the regular session idle timeout as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// KioskSessionTTL returns the kiosk session idle timeout as a duration.
func (c *Config) KioskSessionTTL() time.Duration {
	return time.Duration(c.KioskSessionTTLMinutes) * time.Minute
}

// JanitorPeriod parses JanitorInterval. Returns 1h if unset or invalid.
func (c *Config) JanitorPeriod() time.Duration {
	d, err := time.ParseDuration(c.JanitorInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// RuleCachePeriod parses RuleCacheTTL. Returns 30s if unset or invalid.
func (c *Config) RuleCachePeriod() time.Duration {
	d, err := time.ParseDuration(c.RuleCacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// AuditKafkaBrokersList returns Kafka broker addresses from the
// comma-separated config. A non-empty list enables audit streaming.
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil || c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
