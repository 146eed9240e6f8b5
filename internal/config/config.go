// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/tms-go/internal/scheduler"
	"github.com/olegiv/tms-go/internal/store"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver   string `env:"TMS_DB_DRIVER" envDefault:"sqlite"`
	DBPath     string `env:"TMS_DB_PATH" envDefault:"./data/tms.db"`
	DBDSN      string `env:"TMS_DB_DSN"` // required for mysql
	ServerHost string `env:"TMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"TMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"TMS_ENV" envDefault:"development"`
	LogLevel   string `env:"TMS_LOG_LEVEL" envDefault:"info"`

	// Export cache
	RedisURL     string `env:"TMS_REDIS_URL"`
	CachePrefix  string `env:"TMS_CACHE_PREFIX" envDefault:"tms:"`
	CacheTTL     int    `env:"TMS_CACHE_TTL" envDefault:"300"` // seconds; 0 disables the export cache
	CacheMaxSize int    `env:"TMS_CACHE_MAX_SIZE" envDefault:"1000"`

	ExportChunkSize int `env:"TMS_EXPORT_CHUNK_SIZE" envDefault:"1000"`

	// Cron schedule for pre-building every locale's export; empty disables it
	CacheWarmSchedule string `env:"TMS_CACHE_WARM_SCHEDULE"`

	// Per-client API rate limit
	RateLimitRPS   float64 `env:"TMS_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"TMS_RATE_LIMIT_BURST" envDefault:"40"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Dialect returns the SQL dialect of the configured driver.
func (c Config) Dialect() store.Dialect {
	d, _ := store.ParseDialect(c.DBDriver)
	return d
}

// DBTarget returns the SQLite path or the MySQL DSN, depending on the driver.
func (c Config) DBTarget() string {
	if c.Dialect() == store.DialectMySQL {
		return c.DBDSN
	}
	return c.DBPath
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheEnabled reports whether full exports are cached.
func (c Config) CacheEnabled() bool {
	return c.CacheTTL > 0
}

// CacheDuration returns CacheTTL as a duration.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// CacheWarmEnabled reports whether the export warm-up job should run.
func (c Config) CacheWarmEnabled() bool {
	return c.CacheEnabled() && c.CacheWarmSchedule != ""
}

// RateLimitEnabled reports whether the API rate limiter is active.
func (c Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	d, ok := store.ParseDialect(c.DBDriver)
	switch {
	case !ok:
		errs = append(errs, fmt.Errorf("TMS_DB_DRIVER must be sqlite or mysql, got %q", c.DBDriver))
	case d == store.DialectMySQL && c.DBDSN == "":
		errs = append(errs, errors.New("TMS_DB_DSN is required when TMS_DB_DRIVER is mysql"))
	case d == store.DialectSQLite && c.DBPath == "":
		errs = append(errs, errors.New("TMS_DB_PATH must not be empty"))
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("TMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if c.ExportChunkSize < 1 {
		errs = append(errs, fmt.Errorf("TMS_EXPORT_CHUNK_SIZE must be at least 1, got %d", c.ExportChunkSize))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("TMS_CACHE_TTL must not be negative, got %d", c.CacheTTL))
	}
	if c.CacheMaxSize < 0 {
		errs = append(errs, fmt.Errorf("TMS_CACHE_MAX_SIZE must not be negative, got %d", c.CacheMaxSize))
	}
	if c.CacheWarmSchedule != "" {
		if err := scheduler.ValidateSchedule(c.CacheWarmSchedule); err != nil {
			errs = append(errs, fmt.Errorf("TMS_CACHE_WARM_SCHEDULE: %w", err))
		}
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("TMS_RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst))
	}

	return errors.Join(errs...)
}
