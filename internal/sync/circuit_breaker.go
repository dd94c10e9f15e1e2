// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package sync

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/metrics"
	"github.com/tomtom215/moodie/internal/recommend"
)

// CatalogClient is the Plex surface the breaker protects.
type CatalogClient interface {
	FetchCatalog(ctx context.Context, format recommend.Format) ([]recommend.MediaItem, error)
	ServerIdentity(ctx context.Context) (string, error)
}

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	HalfOpenMax  uint32
	Interval     time.Duration
}

// DefaultBreakerSettings opens after 10 requests at a 60% failure ratio,
// stays open for 30s and lets one request through while half-open.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  10,
		FailureRatio: 0.6,
		OpenTimeout:  30 * time.Second,
		HalfOpenMax:  1,
		Interval:     time.Minute,
	}
}

// CircuitBreakerClient wraps a CatalogClient with a circuit breaker. While the
// breaker is open, calls fail fast with gobreaker.ErrOpenState.
//
// The breaker uses real time for its interval and timeout; tests drive it
// through request outcomes rather than a fake clock.
type CircuitBreakerClient struct {
	client CatalogClient
	cb     *gobreaker.CircuitBreaker[[]recommend.MediaItem]
	name   string
}

// NewCircuitBreakerClient wraps client.
func NewCircuitBreakerClient(client CatalogClient, settings BreakerSettings) *CircuitBreakerClient {
	const name = "plex-api"

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]recommend.MediaItem](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.HalfOpenMax,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= settings.FailureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: name}
}

// FetchCatalog fetches the catalog through the breaker.
func (cbc *CircuitBreakerClient) FetchCatalog(ctx context.Context, format recommend.Format) ([]recommend.MediaItem, error) {
	items, err := cbc.cb.Execute(func() ([]recommend.MediaItem, error) {
		return cbc.client.FetchCatalog(ctx, format)
	})
	cbc.record(err)
	return items, err
}

// ServerIdentity bypasses the breaker so the status endpoint can report on
// Plex even while catalog calls are being rejected.
func (cbc *CircuitBreakerClient) ServerIdentity(ctx context.Context) (string, error) {
	return cbc.client.ServerIdentity(ctx)
}

// State returns the breaker state.
func (cbc *CircuitBreakerClient) State() gobreaker.State {
	return cbc.cb.State()
}

func (cbc *CircuitBreakerClient) record(err error) {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
	}
}

// stateToFloat converts a breaker state to the gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
