package config

import "time"

// Config holds runtime configuration for the WasaWasa order bot.
type Config struct {
	AppEnv     string           `mapstructure:"app_env"`
	Server     ServerConfig     `mapstructure:"server"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Twilio     TwilioConfig     `mapstructure:"twilio"`
	Restaurant RestaurantConfig `mapstructure:"restaurant"`
	Session    SessionConfig    `mapstructure:"session"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Dedupe     DedupeConfig     `mapstructure:"dedupe"`
	Events     EventsConfig     `mapstructure:"events"`
}

// ServerConfig configures the webhook HTTP listener.
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// LoggerConfig configures structured logging output.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// SentryConfig toggles error reporting to Sentry.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string `mapstructure:"environment"`
}

// TwilioConfig holds credentials for the WhatsApp messaging provider.
type TwilioConfig struct {
	AccountSID         string `mapstructure:"account_sid"`
	AuthToken          string `mapstructure:"auth_token"`
	WhatsAppNumber     string `mapstructure:"whatsapp_number" validate:"required"`
	ValidateSignatures bool   `mapstructure:"validate_signatures"`
	WebhookURL         string `mapstructure:"webhook_url" validate:"required_if=ValidateSignatures true"`
}

// RestaurantConfig identifies where confirmed orders are announced.
// An empty Phone disables restaurant notifications.
type RestaurantConfig struct {
	Phone string `mapstructure:"phone"`
}

// SessionConfig selects the conversation session backend.
type SessionConfig struct {
	Backend string        `mapstructure:"backend" validate:"oneof=memory redis"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// RedisConfig defines connection parameters shared by redis-backed components.
type RedisConfig struct {
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db" validate:"gte=0"`
	PoolSize        int           `mapstructure:"pool_size" validate:"gte=0"`
	MinIdleConns    int           `mapstructure:"min_idle_conns" validate:"gte=0"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// JobsConfig selects how restaurant notifications are dispatched.
type JobsConfig struct {
	Backend     string `mapstructure:"backend" validate:"oneof=local asynq"`
	Concurrency int    `mapstructure:"concurrency" validate:"gt=0"`
	QueueSize   int    `mapstructure:"queue_size" validate:"gt=0"`
}

// DedupeConfig controls suppression of provider webhook retries.
type DedupeConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// EventsConfig enables publishing order events to RabbitMQ.
type EventsConfig struct {
	AMQPURL    string `mapstructure:"amqp_url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

// UsesRedis reports whether any configured component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	if c == nil {
		return false
	}

	return c.Session.Backend == "redis" || c.Jobs.Backend == "asynq"
}
