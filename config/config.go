// Package config loads the process configuration from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds everything the process needs at startup. Loaded once and
// treated as immutable.
type Config struct {
	// Remote marketplace service
	MarketBaseURL  string        `env:"MARKET_BASE_URL,default=http://localhost:8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=15s"`
	RequestRate    float64       `env:"REQUEST_RATE,default=10"`

	// Proof of work. Difficulty is the single source of truth for every
	// call site.
	PowDifficulty int    `env:"POW_DIFFICULTY,default=4"`
	PowMaxNonce   uint64 `env:"POW_MAX_NONCE,default=4294967296"`
	PowWorkers    int    `env:"POW_WORKERS,default=0"`

	// Auth
	RequireProfile bool `env:"REQUIRE_PROFILE,default=false"`

	// Infrastructure
	RedisURL   string `env:"REDIS_URL,default=redis://localhost:6379/0"`
	ListenAddr string `env:"LISTEN_ADDR,default=:9000"`
}

// Load reads the configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if cfg.PowDifficulty < 0 || cfg.PowDifficulty > 64 {
		return nil, fmt.Errorf("POW_DIFFICULTY %d out of range", cfg.PowDifficulty)
	}

	return &cfg, nil
}
