package config

import (
	"errors"
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	WebhooksEnabled bool   `env:"HQ_WEBHOOKS_ENABLED" envDefault:"false"`
	WebhookSecret   string `env:"HQ_WEBHOOK_SECRET"`
	WebhookProvider string `env:"HQ_WEBHOOK_PROVIDER" envDefault:"hq"`
	SignatureHeader string `env:"HQ_SIGNATURE_HEADER" envDefault:"X-HQ-Signature"`
	MaxBodyBytes    int64  `env:"WEBHOOK_MAX_BODY_BYTES" envDefault:"1048576"`
	AdminJWTSecret  string `env:"ADMIN_JWT_SECRET"`
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Port            int    `env:"PORT" envDefault:"8080"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv          string `env:"APP_ENV" envDefault:"production"`

	DedupStore         string        `env:"DEDUP_STORE" envDefault:"memory"`
	DedupRetention     time.Duration `env:"DEDUP_RETENTION" envDefault:"24h"`
	DedupHighWater     int64         `env:"DEDUP_HIGH_WATER" envDefault:"1000"`
	DedupSweepInterval time.Duration `env:"DEDUP_SWEEP_INTERVAL" envDefault:"1h"`

	DatabaseURL        string `env:"DATABASE_URL"`
	DBMaxOpenConns     int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns     int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetimeS int    `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int    `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisKey      string `env:"REDIS_KEY" envDefault:"webhooks:dedup"`

	// RateLimitRPS of 0 leaves the webhook route unthrottled.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.DedupStore {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DEDUP_STORE=postgres"))
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when DEDUP_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("DEDUP_STORE must be one of memory, postgres, redis; got %q", c.DedupStore))
	}

	if c.WebhookProvider == "" {
		errs = append(errs, errors.New("HQ_WEBHOOK_PROVIDER must not be empty"))
	}
	if c.SignatureHeader == "" {
		errs = append(errs, errors.New("HQ_SIGNATURE_HEADER must not be empty"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("WEBHOOK_MAX_BODY_BYTES must be positive"))
	}
	if c.DedupRetention <= 0 {
		errs = append(errs, errors.New("DEDUP_RETENTION must be positive"))
	}
	if c.DedupHighWater <= 0 {
		errs = append(errs, errors.New("DEDUP_HIGH_WATER must be positive"))
	}
	if c.DedupSweepInterval <= 0 {
		errs = append(errs, errors.New("DEDUP_SWEEP_INTERVAL must be positive"))
	}

	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive when RATE_LIMIT_RPS is set"))
	}

	return errors.Join(errs...)
}

// SignatureRequired reports whether deliveries must carry a valid signature.
func (c *Config) SignatureRequired() bool {
	return c.WebhookSecret != ""
}
