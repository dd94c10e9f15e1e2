// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moodie/config.yaml",
	"/etc/moodie/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Plex: PlexConfig{
			URL:          "",
			Token:        "",
			Timeout:      30 * time.Second,
			MinInterval:  time.Second,
			Sections:     []string{},
			SyncEnabled:  false,
			SyncInterval: time.Hour,
		},
		Database: DatabaseConfig{
			Driver:       DriverDuckDB,
			Path:         "./data/moodie.duckdb",
			DSN:          "",
			MaxOpenConns: 4,
			HistoryTTL:   30 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			Backend:       CacheMemory,
			TTL:           600 * time.Second,
			SweepInterval: 5 * time.Minute,
			RedisAddr:     "127.0.0.1:6379",
			RedisDB:       0,
		},
		Recommend: RecommendConfig{
			DefaultPageSize: 3,
			MaxPageSize:     50,
			ShuffleWindow:   10,
			ComfortCount:    3,
			FallbackCount:   3,
			BingeShowBonus:  false,
			Seed:            0,
			RecordHistory:   true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			CORSOrigins:         []string{},
			RateLimitReqs:       100,
			RateLimitWindow:     time.Minute,
			RateLimitDisabled:   false,
			SessionCookieSecure: false,
		},
	}
}

// LoadWithKoanf layers defaults, the YAML file and the environment
// (ENV > file > defaults), unmarshals, and validates.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"plex.sections",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot pollute config.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"plex_url":           "plex.url",
	"plex_token":         "plex.token",
	"plex_timeout":       "plex.timeout",
	"plex_min_interval":  "plex.min_interval",
	"plex_sections":      "plex.sections",
	"plex_sync_enabled":  "plex.sync_enabled",
	"plex_sync_interval": "plex.sync_interval",

	"db_driver":         "database.driver",
	"duckdb_path":       "database.path",
	"badger_path":       "database.path",
	"database_url":      "database.dsn",
	"db_max_open_conns": "database.max_open_conns",
	"history_ttl":       "database.history_ttl",

	"cache_backend":        "cache.backend",
	"cache_ttl":            "cache.ttl",
	"cache_sweep_interval": "cache.sweep_interval",
	"redis_addr":           "cache.redis_addr",
	"redis_db":             "cache.redis_db",
	"redis_password":       "cache.redis_password",

	"recommend_default_page_size": "recommend.default_page_size",
	"recommend_max_page_size":     "recommend.max_page_size",
	"recommend_shuffle_window":    "recommend.shuffle_window",
	"recommend_comfort_count":     "recommend.comfort_count",
	"recommend_fallback_count":    "recommend.fallback_count",
	"recommend_binge_show_bonus":  "recommend.binge_show_bonus",
	"recommend_seed":              "recommend.seed",
	"recommend_record_history":    "recommend.record_history",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"cors_origins":          "security.cors_origins",
	"rate_limit_requests":   "security.rate_limit_reqs",
	"rate_limit_window":     "security.rate_limit_window",
	"disable_rate_limit":    "security.rate_limit_disabled",
	"session_cookie_secure": "security.session_cookie_secure",
}

// envTransformFunc maps an environment variable name to a koanf path,
// returning "" to skip unmapped names.
//
//	PLEX_URL    -> plex.url
//	DUCKDB_PATH -> database.path
//	HTTP_PORT   -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
