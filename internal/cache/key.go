// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

// KeyPrefix namespaces recommendation pages in shared backends.
const KeyPrefix = "rec:"

// KeyFields is everything that determines the content of a page.
// Field order is part of the fingerprint.
type KeyFields struct {
	SessionID   string   `json:"sessionId"`
	Time        string   `json:"time"`
	Moods       []string `json:"moods"`
	Genres      []string `json:"genres"`
	Format      string   `json:"format"`
	ComfortMode bool     `json:"comfortMode"`
	Surprise    bool     `json:"surprise"`
	Page        int      `json:"page"`
	Size        int      `json:"size"`
}

// Key identifies one cached page. The zero value is not a valid key.
type Key struct {
	sessionID string
	id        string
}

// NewKey fingerprints f with xxhash64 over its JSON encoding.
// Nil and empty slices hash identically.
func NewKey(f KeyFields) Key {
	if f.Moods == nil {
		f.Moods = []string{}
	}
	if f.Genres == nil {
		f.Genres = []string{}
	}

	// Marshalling a struct of strings, bools and ints cannot fail.
	data, _ := json.Marshal(f) //nolint:errcheck // see above

	return Key{
		sessionID: f.SessionID,
		id:        fmt.Sprintf("%s%016x", KeyPrefix, xxhash.Sum64(data)),
	}
}

// String returns the storage key, e.g. "rec:9f86d081884c7d65".
func (k Key) String() string {
	return k.id
}

// SessionID returns the session the key belongs to.
func (k Key) SessionID() string {
	return k.sessionID
}

// sessionIndexKey names the Redis set holding a session's page keys.
func sessionIndexKey(sessionID string) string {
	return KeyPrefix + "session:" + sessionID
}

// sessionGenerationKey names the Redis counter bumped by Invalidate.
func sessionGenerationKey(sessionID string) string {
	return KeyPrefix + "gen:" + sessionID
}
