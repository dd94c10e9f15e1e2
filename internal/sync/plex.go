// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

/*
plex.go - Plex Media Server Catalog Client

PlexClient reads the movie and show libraries of one Plex Media Server and
maps them into recommend.MediaItem values.

Client behavior:
  - X-Plex-Token and Accept: application/json on every request
  - Calls are serialized by a mutex and spaced by a rate limiter
    (one request per MinInterval, burst 1)
  - 401/403 map to ErrPlexUnauthorized, any other non-2xx to ErrPlexStatus
  - No retries; the circuit breaker decides when to stop calling

Related Files:
  - plex_request.go: HTTP request helper
  - plex_library.go: section listing and catalog mapping
  - plex_server.go: server identity
  - circuit_breaker.go: gobreaker wrapper
  - library_sync.go: periodic media table refresh
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"errors"
	"net/http"
	"strings"
	gosync "sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMinInterval = time.Second
)

var (
	// ErrPlexUnauthorized is returned when Plex rejects the token.
	ErrPlexUnauthorized = errors.New("plex rejected the token")

	// ErrPlexStatus is returned for any other non-2xx response.
	ErrPlexStatus = errors.New("unexpected plex response status")
)

// PlexClient handles communication with the Plex Media Server API.
type PlexClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	sections   map[string]struct{}

	mu gosync.Mutex
}

// PlexOption configures a PlexClient.
type PlexOption func(*PlexClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) PlexOption {
	return func(c *PlexClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) PlexOption {
	return func(c *PlexClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMinInterval sets the minimum spacing between requests. Zero disables
// spacing.
func WithMinInterval(d time.Duration) PlexOption {
	return func(c *PlexClient) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithSections restricts the catalog to the given library section keys.
func WithSections(keys []string) PlexOption {
	return func(c *PlexClient) {
		if len(keys) == 0 {
			c.sections = nil
			return
		}
		c.sections = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			c.sections[k] = struct{}{}
		}
	}
}

// NewPlexClient creates a Plex client for baseURL (e.g. http://localhost:32400)
// authenticated with token.
func NewPlexClient(baseURL, token string, opts ...PlexOption) *PlexClient {
	c := &PlexClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(defaultMinInterval), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
