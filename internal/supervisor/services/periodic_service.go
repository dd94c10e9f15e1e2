// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Task is one run of a periodic job. Errors are logged and the job runs
// again on the next tick.
type Task func(ctx context.Context) error

// PeriodicService runs a Task on a fixed interval under supervision.
type PeriodicService struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	task     Task
	logger   zerolog.Logger
}

// NewPeriodicService creates a service named name that calls task every
// interval. Each run is bounded by timeout when it is positive.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPeriodicService(name string, interval, timeout time.Duration, task Task, logger zerolog.Logger) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{
		name:     name,
		interval: interval,
		timeout:  timeout,
		task:     task,
		logger:   logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("periodic service started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.task(ctx); err != nil {
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("periodic task failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("periodic task complete")
}

func (s *PeriodicService) String() string {
	return s.name
}

// Sweeper drops expired cache entries and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// NewCacheSweeper returns a periodic service that sweeps an in-memory cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweeper(cache Sweeper, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	var svc *PeriodicService
	svc = NewPeriodicService("cache-sweeper", interval, 0, func(context.Context) error {
		if n := cache.Sweep(); n > 0 {
			svc.logger.Debug().Int("removed", n).Msg("expired cache entries swept")
		}
		return nil
	}, logger)
	return svc
}

// ValueLogCollector reclaims space in an on-disk key-value store.
type ValueLogCollector interface {
	RunValueLogGC(ctx context.Context) error
}

// NewValueLogGC returns a periodic service that runs value-log garbage
// collection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewValueLogGC(store ValueLogCollector, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService("badger-gc", interval, 10*time.Minute, store.RunValueLogGC, logger)
}
