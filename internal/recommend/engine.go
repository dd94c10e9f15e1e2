// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/moodie/internal/cache"
	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/metrics"
)

// Deps are the engine's collaborators. History may be nil.
type Deps struct {
	Catalog  CatalogSource
	Feedback FeedbackStore
	History  HistoryStore
	Cache    cache.PageCache
}

// Engine runs the recommendation pipeline. It is safe for concurrent use:
// each request works on its own data, and the only shared state is the
// cache and the seed source.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	catalog  CatalogSource
	feedback FeedbackStore
	history  HistoryStore
	cache    cache.PageCache

	// Per-request sources are seeded from rng so scoring never takes a lock.
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewEngine validates cfg and wires the collaborators.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil || deps.Feedback == nil || deps.Cache == nil {
		return nil, errors.New("catalog, feedback store and cache are required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		catalog:  deps.Catalog,
		feedback: deps.Feedback,
		history:  deps.History,
		cache:    deps.Cache,
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for recommendation shuffling
	}, nil
}

// Recommend returns one page of recommendations for sessionID.
//
// Input is normalized, never rejected. A cached page for the same inputs is
// returned as-is within the cache TTL. Otherwise feedback and the catalog
// are loaded in parallel, then filtered, scored, ranked and paginated.
// Page 1 is never empty while the catalog is non-empty; a page past the end
// of the ranked list is.
//
// A computed page is cached only if no feedback for the session was
// recorded while it was being built.
//
// Errors: ErrEmptySession, a wrapped ErrUpstreamUnavailable when the catalog
// cannot be fetched, or a "load feedback" error when the store fails.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, sessionID string, in PreferenceInput, page, size int) (*Page, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	start := time.Now()

	pref := Normalize(in)
	page, size = NormalizePaging(page, size, e.config.DefaultPageSize, e.config.MaxPageSize)
	logger := e.requestLogger(ctx, sessionID, pref, page)

	key := cache.NewKey(cache.KeyFields{
		SessionID:   sessionID,
		Time:        string(pref.Time),
		Moods:       pref.Moods,
		Genres:      pref.Genres,
		Format:      string(pref.Format),
		ComfortMode: pref.ComfortMode,
		Surprise:    pref.Surprise,
		Page:        page,
		Size:        size,
	})

	if cached := e.cachedPage(ctx, key, logger); cached != nil {
		metrics.RecordRecommend("cache_hit", "cache", time.Since(start))
		return cached, nil
	}

	// Read before feedback is loaded; RecordFeedback bumps it after saving.
	gen := e.cache.Generation(ctx, sessionID)

	fb, catalog, err := e.load(ctx, sessionID, pref.Format)
	if err != nil {
		metrics.RecordRecommend("error", "pipeline", time.Since(start))
		logger.Warn().Err(err).Msg("recommendation failed")
		return nil, err
	}
	fb = fb.WithCatalog(catalog)

	rng := e.requestRand()

	candidates := Filter(catalog, pref)
	outcome := "computed"
	if len(candidates) == 0 {
		candidates = catalog
		outcome = "fallback"
	}
	metrics.RecommendCandidates.Observe(float64(len(candidates)))

	scorer := NewScorer(pref, fb.Signals, fb.Liked, fb.Disliked, rng, ScoreOptions{
		BingeShowBonus: e.config.BingeShowBonus,
	})
	list := Rank(scorer.ScoreAll(candidates), catalog, pref, page, rng, e.config.rankOptions())
	items, hasMore := Paginate(list, page, size)

	result := &Page{Recommendations: items, HasMore: hasMore}

	payload, err := json.Marshal(result)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to encode page for cache")
	} else if !e.cache.SetIfGeneration(ctx, key, payload, gen) {
		logger.Debug().Msg("feedback changed mid-request; page not cached")
	}

	e.recordHistory(ctx, sessionID, pref, page, items, logger)

	metrics.RecordRecommend(outcome, "pipeline", time.Since(start))
	logger.Debug().
		Int("catalog", len(catalog)).
		Int("candidates", len(candidates)).
		Int("ranked", len(list)).
		Int("returned", len(items)).
		Bool("has_more", hasMore).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")

	return result, nil
}

// RecordFeedback persists signal for title, then drops the session's
// cached pages so the next request reflects it.
func (e *Engine) RecordFeedback(ctx context.Context, sessionID, title string, signal Signal) error {
	if sessionID == "" {
		return ErrEmptySession
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if _, err := ParseSignal(string(signal)); err != nil {
		return err
	}

	if err := e.feedback.SaveFeedback(ctx, sessionID, title, signal); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	if err := e.cache.Invalidate(ctx, sessionID); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}

	metrics.FeedbackRecorded.WithLabelValues(string(signal)).Inc()
	logging.Ctx(ctx).Info().
		Str("session", logging.SanitizeSessionID(sessionID)).
		Str("title", logging.SanitizeLogValue(title)).
		Str("signal", string(signal)).
		Msg("feedback recorded")
	return nil
}

// RecentHistory returns up to limit recently served titles, newest first.
// It returns an empty slice when history is not configured.
func (e *Engine) RecentHistory(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}
	if e.history == nil {
		return []HistoryEntry{}, nil
	}
	entries, err := e.history.RecentRecommendations(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent recommendations: %w", err)
	}
	return entries, nil
}

// load fetches the session's feedback and the catalog concurrently.
func (e *Engine) load(ctx context.Context, sessionID string, format Format) (SessionFeedback, []MediaItem, error) {
	var (
		fb      SessionFeedback
		catalog []MediaItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		agg, err := AggregateFeedback(gctx, e.feedback, sessionID)
		if err != nil {
			return fmt.Errorf("load feedback: %w", err)
		}
		fb = agg
		return nil
	})
	g.Go(func() error {
		items, err := e.catalog.FetchCatalog(gctx, format)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		catalog = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return SessionFeedback{}, nil, err
	}
	return fb, catalog, nil
}

// cachedPage returns the decoded page for key, or nil on a miss. A payload
// that fails to decode is treated as a miss and overwritten later.
func (e *Engine) cachedPage(ctx context.Context, key cache.Key, logger zerolog.Logger) *Page {
	payload, ok := e.cache.Get(ctx, key)
	if !ok {
		return nil
	}
	var p Page
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Warn().Err(err).Str("key", key.String()).Msg("discarding undecodable cached page")
		return nil
	}
	if p.Recommendations == nil {
		p.Recommendations = []MediaItem{}
	}
	logger.Debug().Msg("cache hit")
	return &p
}

// requestRand derives an independent source for one request.
func (e *Engine) requestRand() *rand.Rand {
	e.rngMu.Lock()
	seed := e.rng.Int63()
	e.rngMu.Unlock()
	return rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for recommendation shuffling
}

// recordHistory writes the served page. Failures are logged, not returned,
// and the write survives cancellation of the request context.
//
//nolint:gocritic // hugeParam: pref passed by value for immutability
func (e *Engine) recordHistory(ctx context.Context, sessionID string, pref Preference, page int, items []MediaItem, logger zerolog.Logger) {
	if e.history == nil || !e.config.RecordHistory || len(items) == 0 {
		return
	}

	now := time.Now().UTC()
	entries := make([]HistoryEntry, len(items))
	for i := range items {
		entries[i] = HistoryEntry{
			SessionID:     sessionID,
			Title:         items[i].Title,
			Moods:         pref.Moods,
			Time:          pref.Time,
			Page:          page,
			Rank:          i + 1,
			RecommendedAt: now,
		}
	}

	hctx := context.WithoutCancel(ctx)
	if e.config.HistoryTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(hctx, e.config.HistoryTimeout)
		defer cancel()
	}

	if err := e.history.RecordRecommendations(hctx, entries); err != nil {
		logger.Warn().Err(err).Msg("failed to record recommendation history")
	}
}

//nolint:gocritic // hugeParam: pref passed by value for immutability
func (e *Engine) requestLogger(ctx context.Context, sessionID string, pref Preference, page int) zerolog.Logger {
	return e.logger.With().
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Str("session", logging.SanitizeSessionID(sessionID)).
		Strs("moods", pref.Moods).
		Str("time", string(pref.Time)).
		Int("page", page).
		Logger()
}
