// Package config provides environment-based configuration for the RideMyWay
// service.
//
// Configuration is loaded from environment variables using Viper, with
// defaults suitable for local development against SQLite.
//
// # Environment Variables
//
//   - DB_TYPE: Database type (sqlite, postgres, mysql). Default: sqlite
//   - DSN: Database connection string. Default: ridemyway.db
//   - SKIP_AUTO_MIGRATE: Skip automatic database migrations. Default: false
//   - DB_TIMEOUT: Per-request store deadline. Default: 10s
//   - LOG_LEVEL: Logging level (debug, info, warn, error). Default: info
//   - PORT: HTTP server port. Default: 5000
//   - JWT_SECRET: HMAC key for identity tokens. Required outside development
//   - TOKEN_TTL: Identity token lifetime. Default: 24h
//   - BCRYPT_COST: Password hashing cost. Default: 10
//   - CLIENT_URL, CLIENT_URL_REGEX: Allowed browser origins
//   - REDIS_URL: Enables the Redis login limiter when set
//   - SWEEP_INTERVAL, SWEEP_GRACE: Expiry sweeper cadence. Default: 1m, 1h
//   - CLEANUP_LOG: Append-only sweeper log. Default: logs/cleanup.log
//   - TELEMETRY_ENABLED, OTLP_ENDPOINT: OpenTelemetry export
//
// # Example Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBType          string        `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"DSN"`
	SkipAutoMigrate bool          `mapstructure:"SKIP_AUTO_MIGRATE"`
	DBTimeout       time.Duration `mapstructure:"DB_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	Port            int           `mapstructure:"PORT"`
	Environment     string        `mapstructure:"ENVIRONMENT"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`

	ClientURL      string `mapstructure:"CLIENT_URL"`
	ClientURLRegex string `mapstructure:"CLIENT_URL_REGEX"`

	RedisURL string `mapstructure:"REDIS_URL"`

	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
	SweepGrace    time.Duration `mapstructure:"SWEEP_GRACE"`
	CleanupLog    string        `mapstructure:"CLEANUP_LOG"`

	TelemetryEnabled bool   `mapstructure:"TELEMETRY_ENABLED"`
	OTLPEndpoint     string `mapstructure:"OTLP_ENDPOINT"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("DB_TYPE", "sqlite")
	v.SetDefault("DSN", "ridemyway.db")
	v.SetDefault("SKIP_AUTO_MIGRATE", false)
	v.SetDefault("DB_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 5000)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("CLIENT_URL_REGEX", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SWEEP_INTERVAL", time.Minute)
	v.SetDefault("SWEEP_GRACE", time.Hour)
	v.SetDefault("CLEANUP_LOG", "logs/cleanup.log")
	v.SetDefault("TELEMETRY_ENABLED", true)
	v.SetDefault("OTLP_ENDPOINT", "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.Environment == "production" {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	if c.SweepInterval <= 0 {
		return errors.New("config: SWEEP_INTERVAL must be positive")
	}
	if c.SweepGrace < 0 {
		return errors.New("config: SWEEP_GRACE must not be negative")
	}
	return nil
}
