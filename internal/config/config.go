// Package config loads server configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable of the server process.
type Config struct {
	// ListenAddr is the TCP address the chat protocol listens on.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":9000"`

	// HTTPAddr serves the WebSocket bridge and admin endpoints.
	// Empty disables the HTTP listener.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// RedisAddr enables seeding the directory from Redis.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// SeedFile seeds the directory from a YAML file. Takes precedence
	// over RedisAddr; when both are empty the built-in seed is used.
	SeedFile string `envconfig:"SEED_FILE"`

	// MaxConns caps concurrent chat connections. 0 means unlimited.
	MaxConns int `envconfig:"MAX_CONNS" default:"1000"`

	// RateLimitMax allows that many connection attempts per remote
	// address within RateLimitWindow. 0 disables limiting.
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"30"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// ShutdownTimeout bounds how long graceful shutdown may take.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Load reads the configuration from CHATSERV_*-prefixed environment
// variables, falling back to the defaults above.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("chatserv", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
