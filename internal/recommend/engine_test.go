// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodie/internal/cache"
)

// mockCatalog implements CatalogSource for testing.
type mockCatalog struct {
	items []MediaItem
	err   error
	calls atomic.Int32
}

func (m *mockCatalog) FetchCatalog(_ context.Context, format Format) ([]MediaItem, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	out := make([]MediaItem, 0, len(m.items))
	for _, it := range m.items {
		if format == FormatAny || it.Type == string(format) {
			out = append(out, it)
		}
	}
	return out, nil
}

// mockStore implements FeedbackStore and HistoryStore for testing.
type mockStore struct {
	mu       sync.Mutex
	feedback map[string]map[string]Signal
	liked    AttributeSet
	disliked AttributeSet
	history  []HistoryEntry

	readErr    error
	saveErr    error
	historyErr error
	attrErr    error
	attrCalls  atomic.Int32
}

func newMockStore() *mockStore {
	return &mockStore{feedback: make(map[string]map[string]Signal)}
}

func (m *mockStore) SaveFeedback(_ context.Context, sessionID, title string, signal Signal) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.feedback[sessionID] == nil {
		m.feedback[sessionID] = make(map[string]Signal)
	}
	m.feedback[sessionID][title] = signal
	return nil
}

func (m *mockStore) FeedbackForSession(_ context.Context, sessionID string) ([]FeedbackEntry, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FeedbackEntry, 0, len(m.feedback[sessionID]))
	for title, sig := range m.feedback[sessionID] {
		out = append(out, FeedbackEntry{SessionID: sessionID, Title: title, Signal: sig})
	}
	return out, nil
}

func (m *mockStore) LikedDislikedAttributes(_ context.Context, _ string) (AttributeSet, AttributeSet, error) {
	m.attrCalls.Add(1)
	if m.attrErr != nil {
		return AttributeSet{}, AttributeSet{}, m.attrErr
	}
	return m.liked, m.disliked, nil
}

func (m *mockStore) RecordRecommendations(_ context.Context, entries []HistoryEntry) error {
	if m.historyErr != nil {
		return m.historyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, entries...)
	return nil
}

func (m *mockStore) RecentRecommendations(_ context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HistoryEntry, 0)
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if m.history[i].SessionID == sessionID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

// comedyCatalog is four comedies with view counts 0, 0, 3, 5 and one
// unwatched drama.
func comedyCatalog() []MediaItem {
	return []MediaItem{
		{Title: "Dodgeball", Type: MediaMovie, Genres: []string{"Comedy"}, Duration: 92, ViewCount: 5},
		{Title: "Booksmart", Type: MediaMovie, Genres: []string{"Comedy"}, Duration: 102, Unwatched: true},
		{Title: "Eternal Sunshine", Type: MediaMovie, Genres: []string{"Drama"}, Duration: 108, Unwatched: true},
		{Title: "Clue", Type: MediaMovie, Genres: []string{"Comedy"}, Duration: 94, ViewCount: 3},
		{Title: "Airplane!", Type: MediaMovie, Genres: []string{"Comedy"}, Duration: 88, Unwatched: true},
	}
}

type engineFixture struct {
	engine  *Engine
	catalog *mockCatalog
	store   *mockStore
	cache   *cache.Memory
}

func newFixture(t *testing.T, cfg *Config, items []MediaItem) *engineFixture {
	t.Helper()
	f := &engineFixture{
		catalog: &mockCatalog{items: items},
		store:   newMockStore(),
		cache:   cache.NewMemory(10 * time.Minute),
	}
	if cfg == nil {
		cfg = DefaultConfig()
		cfg.Seed = 42
	}
	e, err := NewEngine(cfg, Deps{
		Catalog:  f.catalog,
		Feedback: f.store,
		History:  f.store,
		Cache:    f.cache,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	f.engine = e
	return f
}

func unshuffledConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.ShuffleWindow = 0
	return cfg
}

func TestEngine_ComedyExample(t *testing.T) {
	t.Parallel()

	f := newFixture(t, unshuffledConfig(), comedyCatalog())
	page, err := f.engine.Recommend(context.Background(), "s1", PreferenceInput{
		Moods:  []string{"light_funny"},
		Format: "any",
		Time:   "any",
	}, 1, 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// Unwatched comedies score 35 (novelty, time, mood, format), watched
	// comedies 25, and the drama is filtered out by mood.
	want := []string{"Airplane!", "Booksmart", "Clue"}
	if got := titles(page.Recommendations); !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations = %v, want %v", got, want)
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true (Dodgeball remains)")
	}

	s := NewScorer(Normalize(PreferenceInput{Moods: []string{"light_funny"}}), nil, AttributeSet{}, AttributeSet{}, nil, ScoreOptions{})
	catalog := comedyCatalog()
	drama := s.Score(&catalog[2])
	for _, i := range []int{1, 4} {
		if c := s.Score(&catalog[i]); c <= drama {
			t.Errorf("%s scored %d, not above drama %d", catalog[i].Title, c, drama)
		}
	}
}

func TestEngine_ComedyExampleWithShuffle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, comedyCatalog())
	page, err := f.engine.Recommend(context.Background(), "s1", PreferenceInput{Moods: []string{"light_funny"}}, 1, 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(page.Recommendations) != 3 {
		t.Fatalf("got %d items, want 3", len(page.Recommendations))
	}
	for _, it := range page.Recommendations {
		if it.Title == "Eternal Sunshine" {
			t.Error("drama leaked into a light_funny page")
		}
	}
}

func TestEngine_CacheHitSkipsPipeline(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, comedyCatalog())
	ctx := context.Background()
	in := PreferenceInput{Moods: []string{"light_funny"}}

	first, err := f.engine.Recommend(ctx, "s1", in, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.engine.Recommend(ctx, "s1", in, 1, 3)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(titles(first.Recommendations), titles(second.Recommendations)) {
		t.Errorf("cached page differs: %v vs %v", titles(first.Recommendations), titles(second.Recommendations))
	}
	if n := f.catalog.calls.Load(); n != 1 {
		t.Errorf("catalog fetched %d times, want 1", n)
	}

	// Paging and comfort mode are separate entries.
	if _, err := f.engine.Recommend(ctx, "s1", in, 2, 3); err != nil {
		t.Fatal(err)
	}
	in.ComfortMode = true
	if _, err := f.engine.Recommend(ctx, "s1", in, 1, 3); err != nil {
		t.Fatal(err)
	}
	if n := f.catalog.calls.Load(); n != 3 {
		t.Errorf("catalog fetched %d times, want 3", n)
	}
}

func TestEngine_FeedbackInvalidatesSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, unshuffledConfig(), comedyCatalog())
	ctx := context.Background()
	in := PreferenceInput{Moods: []string{"light_funny"}}

	if _, err := f.engine.Recommend(ctx, "s1", in, 1, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.Recommend(ctx, "s2", in, 1, 3); err != nil {
		t.Fatal(err)
	}

	if err := f.engine.RecordFeedback(ctx, "s1", "Dodgeball", SignalUp); err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}

	page, err := f.engine.Recommend(ctx, "s1", in, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	// Dodgeball: 25 + 15 = 40 now leads.
	if page.Recommendations[0].Title != "Dodgeball" {
		t.Errorf("first = %s, want Dodgeball after thumbs up", page.Recommendations[0].Title)
	}

	// s2 is still served from cache.
	before := f.catalog.calls.Load()
	if _, err := f.engine.Recommend(ctx, "s2", in, 1, 3); err != nil {
		t.Fatal(err)
	}
	if f.catalog.calls.Load() != before {
		t.Error("feedback for s1 invalidated s2's page")
	}
}

func TestEngine_NeverEmptyWhenCatalogIsNot(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, comedyCatalog())
	ctx := context.Background()

	// Nothing is a western: the filter empties and the engine falls back.
	page, err := f.engine.Recommend(ctx, "s1", PreferenceInput{Genres: []string{"western"}}, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Recommendations) == 0 {
		t.Fatal("empty page for a non-empty catalog")
	}

	// Every item voted down scores <= 0: the most-watched fallback kicks in.
	for _, it := range comedyCatalog() {
		if err := f.engine.RecordFeedback(ctx, "s2", it.Title, SignalDown); err != nil {
			t.Fatal(err)
		}
	}
	f.store.disliked = AttributeSet{Genres: []string{"comedy", "drama"}}
	page, err = f.engine.Recommend(ctx, "s2", PreferenceInput{}, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Dodgeball", "Clue", "Airplane!"}
	if got := titles(page.Recommendations); !reflect.DeepEqual(got, want) {
		t.Errorf("fallback = %v, want %v", got, want)
	}
}

func TestEngine_NoDuplicateTitles(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, comedyCatalog())
	page, err := f.engine.Recommend(context.Background(), "s1", PreferenceInput{ComfortMode: true}, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, it := range page.Recommendations {
		if seen[it.Title] {
			t.Errorf("duplicate title %q", it.Title)
		}
		seen[it.Title] = true
	}
}

func TestEngine_LaterPagesDeterministicAcrossSeeds(t *testing.T) {
	t.Parallel()

	items := make([]MediaItem, 0, 40)
	for i := 0; i < 40; i++ {
		items = append(items, MediaItem{
			Title:     string(rune('A'+i%26)) + strings.Repeat("x", i/26),
			Type:      MediaMovie,
			Genres:    []string{"Comedy"},
			Duration:  float64(50 + i),
			ViewCount: i % 4,
		})
	}

	run := func(seed int64) []string {
		cfg := DefaultConfig()
		cfg.Seed = seed
		f := newFixture(t, cfg, items)
		page, err := f.engine.Recommend(context.Background(), "s", PreferenceInput{Time: "under_1h"}, 2, 5)
		if err != nil {
			t.Fatal(err)
		}
		return titles(page.Recommendations)
	}

	if a, b := run(1), run(2); !reflect.DeepEqual(a, b) {
		t.Errorf("page 2 differs across seeds: %v vs %v", a, b)
	}
}

func TestEngine_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, comedyCatalog())
		if _, err := f.engine.Recommend(context.Background(), "", PreferenceInput{}, 1, 3); !errors.Is(err, ErrEmptySession) {
			t.Errorf("error = %v, want ErrEmptySession", err)
		}
	})

	t.Run("catalog failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, nil)
		cause := errors.New("connection refused")
		f.catalog.err = cause
		_, err := f.engine.Recommend(context.Background(), "s", PreferenceInput{}, 1, 3)
		if !errors.Is(err, ErrUpstreamUnavailable) || !errors.Is(err, cause) {
			t.Errorf("error = %v, want ErrUpstreamUnavailable wrapping the cause", err)
		}
	})

	t.Run("feedback read failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, comedyCatalog())
		f.store.readErr = errors.New("disk I/O")
		_, err := f.engine.Recommend(context.Background(), "s", PreferenceInput{}, 1, 3)
		if err == nil || !strings.Contains(err.Error(), "load feedback") {
			t.Errorf("error = %v, want load feedback error", err)
		}
		if errors.Is(err, ErrUpstreamUnavailable) {
			t.Error("feedback failure must not be reported as upstream")
		}
	})

	t.Run("invalid signal", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, comedyCatalog())
		if err := f.engine.RecordFeedback(context.Background(), "s", "Clue", Signal("meh")); !errors.Is(err, ErrInvalidSignal) {
			t.Errorf("error = %v, want ErrInvalidSignal", err)
		}
	})

	t.Run("blank title", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, comedyCatalog())
		if err := f.engine.RecordFeedback(context.Background(), "s", "  ", SignalUp); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("error = %v, want ErrEmptyTitle", err)
		}
	})

	t.Run("save failure keeps cache", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, comedyCatalog())
		ctx := context.Background()
		if _, err := f.engine.Recommend(ctx, "s", PreferenceInput{}, 1, 3); err != nil {
			t.Fatal(err)
		}
		f.store.saveErr = errors.New("constraint violation")
		if err := f.engine.RecordFeedback(ctx, "s", "Clue", SignalUp); err == nil {
			t.Fatal("expected save error")
		}
		if f.cache.Len() != 1 {
			t.Errorf("cache Len() = %d, want 1 (no invalidation on failed save)", f.cache.Len())
		}
	})
}

func TestEngine_RecordsHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, unshuffledConfig(), comedyCatalog())
	ctx := context.Background()

	if _, err := f.engine.Recommend(ctx, "s1", PreferenceInput{Moods: []string{"light_funny"}}, 1, 3); err != nil {
		t.Fatal(err)
	}

	hist, err := f.engine.RecentHistory(ctx, "s1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 {
		t.Fatalf("history has %d entries, want 3", len(hist))
	}
	// Newest first: the mock returns in reverse insertion order.
	if hist[0].Title != "Clue" || hist[0].Rank != 3 || hist[2].Rank != 1 {
		t.Errorf("unexpected history order: %+v", hist)
	}
	if !reflect.DeepEqual(hist[0].Moods, []string{"light_funny"}) {
		t.Errorf("history moods = %v", hist[0].Moods)
	}
}

func TestEngine_HistoryFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, comedyCatalog())
	f.store.historyErr = errors.New("history table locked")

	if _, err := f.engine.Recommend(context.Background(), "s1", PreferenceInput{}, 1, 3); err != nil {
		t.Errorf("Recommend() error = %v, want nil despite history failure", err)
	}
}

func TestEngine_RecentHistoryWithoutStore(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(DefaultConfig(), Deps{
		Catalog:  &mockCatalog{},
		Feedback: newMockStore(),
		Cache:    cache.NewMemory(time.Minute),
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	hist, err := e.RecentHistory(context.Background(), "s", 5)
	if err != nil || len(hist) != 0 {
		t.Errorf("RecentHistory() = %v, %v; want empty, nil", hist, err)
	}
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	deps := Deps{Catalog: &mockCatalog{}, Feedback: newMockStore(), Cache: cache.NewMemory(time.Minute)}

	if _, err := NewEngine(&Config{DefaultPageSize: 0, MaxPageSize: 10}, deps, zerolog.Nop()); err == nil {
		t.Error("expected error for zero default page size")
	}
	if _, err := NewEngine(nil, Deps{}, zerolog.Nop()); err == nil {
		t.Error("expected error for missing dependencies")
	}
	if _, err := NewEngine(nil, deps, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine(nil config) error = %v", err)
	}
}

func TestEngine_ConcurrentRequests(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, comedyCatalog())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := []string{"a", "b", "c"}[i%3]
			if _, err := f.engine.Recommend(ctx, session, PreferenceInput{Surprise: i%2 == 0}, 1+i%2, 3); err != nil {
				t.Errorf("Recommend() error = %v", err)
			}
			if i%4 == 0 {
				if err := f.engine.RecordFeedback(ctx, session, "Clue", SignalUp); err != nil {
					t.Errorf("RecordFeedback() error = %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
}

// gatedStore holds the first FeedbackForSession result until release is
// closed, so feedback saved meanwhile is missing from that read.
type gatedStore struct {
	*mockStore
	gate    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) FeedbackForSession(ctx context.Context, sessionID string) ([]FeedbackEntry, error) {
	entries, err := g.mockStore.FeedbackForSession(ctx, sessionID)
	if g.gate.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return entries, err
}

func TestEngine_FeedbackDuringComputeIsNotMaskedByCache(t *testing.T) {
	t.Parallel()

	store := &gatedStore{
		mockStore: newMockStore(),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	store.gate.Store(true)
	catalog := &mockCatalog{items: comedyCatalog()}
	pages := cache.NewMemory(10 * time.Minute)

	e, err := NewEngine(unshuffledConfig(), Deps{
		Catalog:  catalog,
		Feedback: store,
		History:  store.mockStore,
		Cache:    pages,
	}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	in := PreferenceInput{Moods: []string{"light_funny"}}

	type result struct {
		page *Page
		err  error
	}
	done := make(chan result, 1)
	go func() {
		p, err := e.Recommend(ctx, "s1", in, 1, 3)
		done <- result{p, err}
	}()

	<-store.entered
	if err := e.RecordFeedback(ctx, "s1", "Airplane!", SignalDown); err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}
	close(store.release)

	first := <-done
	if first.err != nil {
		t.Fatal(first.err)
	}
	if pages.Len() != 0 {
		t.Errorf("cache Len() = %d, want 0: the in-flight page predates the feedback", pages.Len())
	}

	page, err := e.Recommend(ctx, "s1", in, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if n := catalog.calls.Load(); n != 2 {
		t.Errorf("catalog fetched %d times, want 2", n)
	}
	for _, it := range page.Recommendations {
		if it.Title == "Airplane!" {
			t.Errorf("down-voted title still served: %v", titles(page.Recommendations))
		}
	}
	if pages.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1 after a clean recompute", pages.Len())
	}
}

func TestEngine_LikedGenreLiftsSiblingsWithoutSyncedMedia(t *testing.T) {
	t.Parallel()

	items := []MediaItem{
		{Title: "Heat", Type: MediaMovie, Genres: []string{"Action"}, Directors: []string{"Michael Mann"}, Duration: 170, Unwatched: true},
		{Title: "Collateral", Type: MediaMovie, Genres: []string{"Action"}, Directors: []string{"Michael Mann"}, Duration: 120, Unwatched: true},
		{Title: "Amelie", Type: MediaMovie, Genres: []string{"Romance"}, Duration: 122, Unwatched: true},
		{Title: "Notting Hill", Type: MediaMovie, Genres: []string{"Romance"}, Duration: 124, Unwatched: true},
	}
	// The mock store's media join is empty, as it is before any library sync.
	f := newFixture(t, unshuffledConfig(), items)
	ctx := context.Background()

	if err := f.engine.RecordFeedback(ctx, "s1", "Heat", SignalUp); err != nil {
		t.Fatal(err)
	}
	page, err := f.engine.Recommend(ctx, "s1", PreferenceInput{}, 1, 4)
	if err != nil {
		t.Fatal(err)
	}

	// Heat 25+15+6+4, Collateral 25+6+4, the romances 25.
	want := []string{"Heat", "Collateral", "Amelie", "Notting Hill"}
	if got := titles(page.Recommendations); !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations = %v, want %v", got, want)
	}
}

func TestEngine_HugePageNumberIsEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil, comedyCatalog())
	page, err := f.engine.Recommend(context.Background(), "s1", PreferenceInput{}, 1<<62, 4)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(page.Recommendations) != 0 || page.HasMore {
		t.Errorf("page = %v, hasMore %v; want empty, false", titles(page.Recommendations), page.HasMore)
	}
}
