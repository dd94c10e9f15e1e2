// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/moodie/internal/logging"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development, staging, production (got %q)", c.Server.Environment)
	}
	return nil
}

func (c *Config) validatePlex() error {
	if c.Plex.URL == "" {
		return errors.New("PLEX_URL is required")
	}
	u, err := url.Parse(c.Plex.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PLEX_URL must be an http(s) URL: %q", c.Plex.URL)
	}
	if c.Plex.Token == "" {
		return errors.New("PLEX_TOKEN is required")
	}
	if c.Plex.Timeout <= 0 {
		return errors.New("PLEX_TIMEOUT must be positive")
	}
	if c.Plex.MinInterval < 0 {
		return errors.New("PLEX_MIN_INTERVAL must not be negative")
	}
	if c.Plex.SyncEnabled && c.Plex.SyncInterval < time.Minute {
		return errors.New("PLEX_SYNC_INTERVAL must be at least 1m when sync is enabled")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB, DriverBadger:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for driver %s", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("DATABASE_URL is required for driver postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of duckdb, postgres, badger (got %q)", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 0 {
		return errors.New("DB_MAX_OPEN_CONNS must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for cache backend redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis (got %q)", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultPageSize < 1 {
		return errors.New("recommend.default_page_size must be at least 1")
	}
	if r.MaxPageSize < r.DefaultPageSize {
		return fmt.Errorf("recommend.max_page_size (%d) must be >= default_page_size (%d)", r.MaxPageSize, r.DefaultPageSize)
	}
	if r.ShuffleWindow < 0 || r.ComfortCount < 0 || r.FallbackCount < 0 {
		return errors.New("recommend shuffle_window, comfort_count and fallback_count must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return errors.New("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return errors.New("RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if strings.TrimSpace(origin) == "*" {
				return errors.New("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}
