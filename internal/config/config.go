package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"marketplace_db"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	KafkaBrokers             []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaPaymentEventsTopic  string   `envconfig:"KAFKA_PAYMENT_EVENTS_TOPIC" default:"payment_events"`
	KafkaSettlementTopic     string   `envconfig:"KAFKA_SETTLEMENT_TOPIC" default:"payout_settlements"`
	KafkaConsumerGroup       string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"marketplace-settlement-group"`

	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxPollTimeout  time.Duration `envconfig:"OUTBOX_POLL_TIMEOUT" default:"10s"`

	// Gateway credentials are optional: when either is empty every new order
	// is created in demo mode. The client appends /v1/... itself, so the base
	// URL carries no version segment.
	GatewayBaseURL string `envconfig:"GATEWAY_BASE_URL" default:"https://api.razorpay.com"`
	GatewayKeyID   string `envconfig:"GATEWAY_KEY_ID"`
	GatewaySecret  string `envconfig:"GATEWAY_SECRET"`

	Currency string `envconfig:"CURRENCY" default:"INR"`

	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CartTTL    time.Duration `envconfig:"CART_TTL" default:"72h"`

	CacheTTL           time.Duration `envconfig:"CACHE_TTL" default:"60s"`
	CacheSweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"30s"`

	CheckoutRateLimit  int           `envconfig:"CHECKOUT_RATE_LIMIT" default:"20"`
	CheckoutRateWindow time.Duration `envconfig:"CHECKOUT_RATE_WINDOW" default:"1s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port, got %d", c.HTTPPort)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if c.CheckoutRateLimit <= 0 {
		return fmt.Errorf("CHECKOUT_RATE_LIMIT must be > 0")
	}
	if (c.GatewayKeyID == "") != (c.GatewaySecret == "") {
		return fmt.Errorf("GATEWAY_KEY_ID and GATEWAY_SECRET must be set together")
	}
	return nil
}

// GatewayConfigured reports whether real gateway credentials are present.
func (c *Config) GatewayConfigured() bool {
	return c.GatewayKeyID != "" && c.GatewaySecret != ""
}

func (c *Config) DBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
