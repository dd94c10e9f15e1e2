// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import "errors"

var (
	// ErrUpstreamUnavailable wraps any catalog source failure, including an
	// open circuit breaker. It is never retried.
	ErrUpstreamUnavailable = errors.New("catalog source unavailable")

	// ErrInvalidSignal is returned for feedback other than "up" or "down".
	ErrInvalidSignal = errors.New("feedback signal must be up or down")

	// ErrEmptySession is returned when no session identity was supplied.
	ErrEmptySession = errors.New("session id is required")

	// ErrEmptyTitle is returned when feedback names no title.
	ErrEmptyTitle = errors.New("title is required")
)
