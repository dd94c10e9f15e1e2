// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package config loads Moodie's configuration.
//
// Sources are layered with Koanf v2, later layers winning:
//
//  1. Built-in defaults
//  2. A YAML file (CONFIG_PATH, or config.yaml / config.yml / /etc/moodie/config.yaml)
//  3. Environment variables (see envMappings in koanf.go)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Plex      PlexConfig      `koanf:"plex"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// PlexConfig describes the Plex Media Server used as the catalog source.
type PlexConfig struct {
	URL   string `koanf:"url"`
	Token string `koanf:"token"`

	// Timeout bounds a single HTTP call to Plex.
	Timeout time.Duration `koanf:"timeout"`

	// MinInterval is the minimum spacing between catalog fetches.
	MinInterval time.Duration `koanf:"min_interval"`

	// Sections optionally restricts the catalog to these library section keys.
	Sections []string `koanf:"sections"`

	// SyncEnabled turns on the background media sync that feeds liked/disliked
	// attribute derivation.
	SyncEnabled  bool          `koanf:"sync_enabled"`
	SyncInterval time.Duration `koanf:"sync_interval"`
}

// Storage drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// DatabaseConfig selects and configures the feedback/history store.
type DatabaseConfig struct {
	Driver       string        `koanf:"driver"`
	Path         string        `koanf:"path"` // DuckDB file or Badger directory
	DSN          string        `koanf:"dsn"`  // Postgres connection string
	MaxOpenConns int           `koanf:"max_open_conns"`
	HistoryTTL   time.Duration `koanf:"history_ttl"` // Badger only
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig configures the recommendation page cache.
type CacheConfig struct {
	Backend       string        `koanf:"backend"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisDB       int           `koanf:"redis_db"`
	RedisPassword string        `koanf:"redis_password"`
}

// RecommendConfig tunes the ranking pipeline.
type RecommendConfig struct {
	DefaultPageSize int   `koanf:"default_page_size"`
	MaxPageSize     int   `koanf:"max_page_size"`
	ShuffleWindow   int   `koanf:"shuffle_window"`
	ComfortCount    int   `koanf:"comfort_count"`
	FallbackCount   int   `koanf:"fallback_count"`
	BingeShowBonus  bool  `koanf:"binge_show_bonus"`
	Seed            int64 `koanf:"seed"` // 0 seeds from the clock
	RecordHistory   bool  `koanf:"record_history"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins         []string      `koanf:"cors_origins"`
	RateLimitReqs       int           `koanf:"rate_limit_reqs"`
	RateLimitWindow     time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled   bool          `koanf:"rate_limit_disabled"`
	SessionCookieSecure bool          `koanf:"session_cookie_secure"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional YAML file, and the
// environment, then validates it.
func Load() (*Config, error) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
