// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodie/internal/metrics"
	"github.com/tomtom215/moodie/internal/recommend"
)

// CatalogFetcher is the read side of a catalog source.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, format recommend.Format) ([]recommend.MediaItem, error)
}

// MediaWriter persists a catalog snapshot.
type MediaWriter interface {
	UpsertMedia(ctx context.Context, items []recommend.MediaItem) error
}

// LibrarySync copies the full catalog into the store's media table on a
// fixed interval so feedback can be resolved to genres, directors and cast.
// It implements suture.Service.
type LibrarySync struct {
	source   CatalogFetcher
	store    MediaWriter
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewLibrarySync creates the sync service. The first run happens as soon as
// Serve is called.
func NewLibrarySync(source CatalogFetcher, store MediaWriter, interval time.Duration, logger zerolog.Logger) *LibrarySync {
	if interval <= 0 {
		interval = time.Hour
	}
	return &LibrarySync{
		source:   source,
		store:    store,
		interval: interval,
		timeout:  5 * time.Minute,
		logger:   logger.With().Str("component", "library-sync").Logger(),
	}
}

// Serve runs until ctx is canceled. Failed runs are logged and retried on the
// next tick.
func (s *LibrarySync) Serve(ctx context.Context) error {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one fetch-and-upsert cycle and reports whether it succeeded.
func (s *LibrarySync) RunOnce(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	items, err := s.source.FetchCatalog(ctx, recommend.FormatAny)
	if err != nil {
		metrics.MediaSyncRuns.WithLabelValues("fetch_error").Inc()
		s.logger.Warn().Err(err).Msg("Library sync fetch failed")
		return false
	}

	if err := s.store.UpsertMedia(ctx, items); err != nil {
		metrics.MediaSyncRuns.WithLabelValues("store_error").Inc()
		s.logger.Warn().Err(err).Int("items", len(items)).Msg("Library sync upsert failed")
		return false
	}

	metrics.MediaSyncRuns.WithLabelValues("success").Inc()
	s.logger.Info().
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Library sync completed")
	return true
}

// String implements fmt.Stringer for suture logging.
func (s *LibrarySync) String() string {
	return "library-sync"
}
