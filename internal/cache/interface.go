// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package cache stores rendered recommendation pages keyed by a fingerprint
// of (session, preference, page, size).
//
// Entries live for a fixed TTL and are reaped lazily on Get. Every key
// remembers the session it belongs to so that all of a session's pages can
// be dropped at once when its feedback changes.
//
// Invalidation also advances a per-session generation. A page computed from
// feedback read before an invalidation carries the old generation, and
// SetIfGeneration refuses it:
//
//	gen := c.Generation(ctx, session)
//	page := build(ctx) // reads feedback
//	c.SetIfGeneration(ctx, key, page, gen)
//
// Two backends implement PageCache:
//
//	// Process-local, single mutex, injectable clock
//	c := cache.NewMemory(10 * time.Minute)
//
//	// Shared across replicas
//	c, err := cache.NewRedis(ctx, cache.RedisOptions{Addr: "127.0.0.1:6379"}, 10*time.Minute, logger)
//
// Payloads are opaque bytes. Callers must treat a returned payload as
// read-only; it is the same slice on every hit.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodie/internal/config"
)

// PageCache is the contract the recommendation engine depends on.
type PageCache interface {
	// Get returns the payload stored under key and true, or nil and false on
	// a miss. An expired entry is deleted and reported as a miss.
	Get(ctx context.Context, key Key) ([]byte, bool)

	// Set stores payload under key, replacing any previous entry wholesale.
	Set(ctx context.Context, key Key, payload []byte)

	// Invalidate drops every entry whose key belongs to sessionID and bumps
	// the session's generation.
	Invalidate(ctx context.Context, sessionID string) error

	// Generation returns the session's invalidation counter. Read it before
	// loading the data a page is built from.
	Generation(ctx context.Context, sessionID string) uint64

	// SetIfGeneration stores payload like Set unless the session has been
	// invalidated since gen was read. It reports whether the page was stored.
	SetIfGeneration(ctx context.Context, key Key, payload []byte, gen uint64) bool
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits          int64
	Misses        int64
	Expirations   int64
	Invalidations int64
	StaleWrites   int64
	Entries       int
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// New builds the backend selected by cfg.Backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (PageCache, error) {
	switch cfg.Backend {
	case config.CacheMemory, "":
		return NewMemory(cfg.TTL), nil
	case config.CacheRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, cfg.TTL, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// DefaultTTL is the lifetime of a cached page when none is configured.
const DefaultTTL = 600 * time.Second
