// Package config loads bookkeeper settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Review sink backends.
const (
	SinkSQLite = "sqlite"
	SinkRedis  = "redis"
)

// Config holds runtime settings. Command-line flags override these.
type Config struct {
	DBPath        string        `env:"BOOKKEEPER_DB"             envDefault:"bookkeeper.db"`
	StoreTimeout  time.Duration `env:"BOOKKEEPER_STORE_TIMEOUT"  envDefault:"5s"`
	SettleTimeout time.Duration `env:"BOOKKEEPER_SETTLE_TIMEOUT" envDefault:"2s"`
	Workers       int           `env:"BOOKKEEPER_WORKERS"        envDefault:"4"`
	ReviewSink    string        `env:"BOOKKEEPER_REVIEW_SINK"    envDefault:"sqlite"`
	RedisAddr     string        `env:"BOOKKEEPER_REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisStream   string        `env:"BOOKKEEPER_REDIS_STREAM"   envDefault:"bookkeeper:review"`
}

// Load reads an optional .env file from dotenvPath (empty skips it), then
// parses the environment. Variables already set win over .env entries.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges env tags cannot express.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("BOOKKEEPER_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.StoreTimeout < 0 {
		return fmt.Errorf("BOOKKEEPER_STORE_TIMEOUT must not be negative, got %s", c.StoreTimeout)
	}
	if c.SettleTimeout < 0 {
		return fmt.Errorf("BOOKKEEPER_SETTLE_TIMEOUT must not be negative, got %s", c.SettleTimeout)
	}
	switch c.ReviewSink {
	case SinkSQLite, SinkRedis:
	default:
		return fmt.Errorf("BOOKKEEPER_REVIEW_SINK must be %q or %q, got %q", SinkSQLite, SinkRedis, c.ReviewSink)
	}
	return nil
}
