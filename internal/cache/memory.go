// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/moodie/internal/metrics"
)

const memoryBackend = "memory"

type memoryEntry struct {
	payload   []byte
	createdAt time.Time
	sessionID string
}

// Memory is the process-local PageCache.
//
// A single mutex guards the entry map, the per-session index and the
// session generations; no I/O happens while it is held. Racing Sets for the
// same key resolve last write wins.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	sessions map[string]map[string]struct{}
	gens     map[string]uint64
	ttl      time.Duration
	now      func() time.Time
	stats    Stats
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock replaces time.Now. Tests use it to step across the TTL boundary.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an empty cache whose entries live for ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{
		entries:  make(map[string]memoryEntry),
		sessions: make(map[string]map[string]struct{}),
		gens:     make(map[string]uint64),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements PageCache.
func (m *Memory) Get(_ context.Context, key Key) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key.String()]
	if !ok {
		m.stats.Misses++
		metrics.CacheMisses.WithLabelValues(memoryBackend).Inc()
		return nil, false
	}

	if m.expired(e) {
		m.removeLocked(key.String(), e.sessionID)
		m.stats.Misses++
		m.stats.Expirations++
		metrics.CacheMisses.WithLabelValues(memoryBackend).Inc()
		metrics.CacheExpirations.WithLabelValues(memoryBackend).Inc()
		m.publishSizeLocked()
		return nil, false
	}

	m.stats.Hits++
	metrics.CacheHits.WithLabelValues(memoryBackend).Inc()
	return e.payload, true
}

// Set implements PageCache.
func (m *Memory) Set(_ context.Context, key Key, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, payload)
}

// SetIfGeneration implements PageCache.
func (m *Memory) SetIfGeneration(_ context.Context, key Key, payload []byte, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gens[key.SessionID()] != gen {
		m.stats.StaleWrites++
		metrics.CacheStaleWrites.WithLabelValues(memoryBackend).Inc()
		return false
	}
	m.setLocked(key, payload)
	return true
}

// Generation implements PageCache.
func (m *Memory) Generation(_ context.Context, sessionID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[sessionID]
}

func (m *Memory) setLocked(key Key, payload []byte) {
	id := key.String()
	m.entries[id] = memoryEntry{
		payload:   payload,
		createdAt: m.now(),
		sessionID: key.SessionID(),
	}

	idx, ok := m.sessions[key.SessionID()]
	if !ok {
		idx = make(map[string]struct{})
		m.sessions[key.SessionID()] = idx
	}
	idx[id] = struct{}{}

	m.publishSizeLocked()
}

// Invalidate implements PageCache. It never fails.
func (m *Memory) Invalidate(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gens[sessionID]++

	idx := m.sessions[sessionID]
	for id := range idx {
		delete(m.entries, id)
	}
	delete(m.sessions, sessionID)

	if n := len(idx); n > 0 {
		m.stats.Invalidations += int64(n)
		metrics.CacheInvalidations.WithLabelValues(memoryBackend).Add(float64(n))
		m.publishSizeLocked()
	}
	return nil
}

// Sweep removes every expired entry and returns how many were dropped.
// Lookups already treat expired entries as misses; Sweep only reclaims
// memory held for sessions that never return.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.entries {
		if m.expired(e) {
			m.removeLocked(id, e.sessionID)
			removed++
		}
	}

	if removed > 0 {
		m.stats.Expirations += int64(removed)
		metrics.CacheExpirations.WithLabelValues(memoryBackend).Add(float64(removed))
		m.publishSizeLocked()
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stats returns a snapshot of the cache counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Entries = len(m.entries)
	return s
}

// TTL returns the configured entry lifetime.
func (m *Memory) TTL() time.Duration {
	return m.ttl
}

func (m *Memory) expired(e memoryEntry) bool {
	return m.now().Sub(e.createdAt) >= m.ttl
}

func (m *Memory) removeLocked(id, sessionID string) {
	delete(m.entries, id)
	if idx, ok := m.sessions[sessionID]; ok {
		delete(idx, id)
		if len(idx) == 0 {
			delete(m.sessions, sessionID)
		}
	}
}

func (m *Memory) publishSizeLocked() {
	metrics.CacheEntries.WithLabelValues(memoryBackend).Set(float64(len(m.entries)))
}
