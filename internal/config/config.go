package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all process configuration. Everything is supplied through
// environment variables; there is no file-based configuration.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"8080"`

	// RedisAddr is the host:port of the backing Redis server.
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// Namespace is the key prefix under which all contact records and tag
	// index sets are stored. It plays the role of a table name.
	Namespace string `env:"DB_NAMESPACE" envDefault:"contacts"`

	// AllowOrigins is the origin allowed by CORS, or "*" for any origin.
	AllowOrigins string `env:"ALLOW_ORIGINS" envDefault:"*"`

	// LogMode selects the logging configuration, "dev" or "prod".
	LogMode string `env:"LOG_MODE" envDefault:"dev"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
