// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"errors"
	"fmt"
	"time"
)

// Config tunes the engine. See DefaultConfig for values.
type Config struct {
	// DefaultPageSize replaces a requested size below 1.
	DefaultPageSize int `json:"default_page_size"`

	// MaxPageSize caps the requested size.
	MaxPageSize int `json:"max_page_size"`

	// ShuffleWindow, ComfortCount and FallbackCount size the ranking stages.
	ShuffleWindow int `json:"shuffle_window"`
	ComfortCount  int `json:"comfort_count"`
	FallbackCount int `json:"fallback_count"`

	// BingeShowBonus enables the open-time show bonus.
	BingeShowBonus bool `json:"binge_show_bonus"`

	// Seed seeds the engine's random source. Zero seeds from the clock.
	Seed int64 `json:"seed"`

	// RecordHistory logs served pages to the HistoryStore.
	RecordHistory bool `json:"record_history"`

	// HistoryTimeout bounds the best-effort history write.
	HistoryTimeout time.Duration `json:"history_timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultPageSize: 3,
		MaxPageSize:     50,
		ShuffleWindow:   10,
		ComfortCount:    3,
		FallbackCount:   3,
		BingeShowBonus:  false,
		Seed:            0,
		RecordHistory:   true,
		HistoryTimeout:  2 * time.Second,
	}
}

// Validate checks that sizes are usable.
func (c *Config) Validate() error {
	if c.DefaultPageSize < 1 {
		return errors.New("default page size must be at least 1")
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("max page size %d below default page size %d", c.MaxPageSize, c.DefaultPageSize)
	}
	if c.ShuffleWindow < 0 || c.ComfortCount < 0 || c.FallbackCount < 0 {
		return errors.New("shuffle window, comfort count and fallback count must not be negative")
	}
	if c.HistoryTimeout < 0 {
		return errors.New("history timeout must not be negative")
	}
	return nil
}

func (c *Config) rankOptions() RankOptions {
	return RankOptions{
		ShuffleWindow: c.ShuffleWindow,
		ComfortCount:  c.ComfortCount,
		FallbackCount: c.FallbackCount,
	}
}
