package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	DeadLetter DeadLetterConfig `mapstructure:"deadletter"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// UpstreamConfig describes the remote commerce API consumed by sync jobs.
type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	LocationID     string        `mapstructure:"location_id"`
	PageSize       int           `mapstructure:"page_size"`
	PageDelay      time.Duration `mapstructure:"page_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Retry          RetryConfig   `mapstructure:"retry"`
}

// RetryConfig holds the retry policy for remote calls.
type RetryConfig struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	BaseDelay         time.Duration `mapstructure:"base_delay"`
	Multiplier        float64       `mapstructure:"multiplier"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
	RetryAfterDefault time.Duration `mapstructure:"retry_after_default"`
}

// WebhookConfig controls the inbound event pipeline.
type WebhookConfig struct {
	Secret       string        `mapstructure:"secret"`
	QueueSize    int           `mapstructure:"queue_size"`
	Workers      int           `mapstructure:"workers"`
	PendingLease time.Duration `mapstructure:"pending_lease"`
	// DedupBackend selects where processed-event markers live:
	// "redis" (default) or "postgres".
	DedupBackend string `mapstructure:"dedup_backend"`
}

// DeadLetterConfig configures the optional Kafka dead-letter sink.
// Empty brokers disables dead-lettering.
type DeadLetterConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CSS_ (Commerce Sync Service).
// Nested keys use underscore: CSS_DATABASE_HOST, CSS_WEBHOOK_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "commerce_sync")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("upstream.base_url", "https://api.example.com")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.location_id", "")
	v.SetDefault("upstream.page_size", 50)
	v.SetDefault("upstream.page_delay", "200ms")
	v.SetDefault("upstream.request_timeout", "30s")
	v.SetDefault("upstream.retry.max_attempts", 3)
	v.SetDefault("upstream.retry.base_delay", "1s")
	v.SetDefault("upstream.retry.multiplier", 2.0)
	v.SetDefault("upstream.retry.max_delay", "30s")
	v.SetDefault("upstream.retry.retry_after_default", "5s")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.queue_size", 256)
	v.SetDefault("webhook.workers", 4)
	v.SetDefault("webhook.pending_lease", "10m")
	v.SetDefault("webhook.dedup_backend", "redis")
	v.SetDefault("deadletter.brokers", []string{})
	v.SetDefault("deadletter.topic", "webhook-dead-letter")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CSS_DATABASE_HOST -> database.host
	v.SetEnvPrefix("CSS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
