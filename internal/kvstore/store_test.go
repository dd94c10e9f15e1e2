// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package kvstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/moodie/internal/config"
	"github.com/tomtom215/moodie/internal/recommend"
)

func setupTestStore(t *testing.T, historyTTL time.Duration) *Store {
	t.Helper()

	s, err := Open(config.DatabaseConfig{Driver: config.DriverBadger, Path: ":memory:", HistoryTTL: historyTTL})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestFeedback(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t, 0)
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.SaveFeedback(ctx, "s1", "Heat", recommend.SignalUp))
	must(s.SaveFeedback(ctx, "s1", "Alien", recommend.SignalUp))
	must(s.SaveFeedback(ctx, "s1", "Heat", recommend.SignalDown))
	must(s.SaveFeedback(ctx, "s10", "Other", recommend.SignalUp))

	got, err := s.FeedbackForSession(ctx, "s1")
	must(err)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (a session must not see a longer session id): %+v", len(got), got)
	}
	if got[0].Title != "Alien" || got[1].Title != "Heat" || got[1].Signal != recommend.SignalDown {
		t.Errorf("FeedbackForSession() = %+v", got)
	}
	if got[1].SessionID != "s1" || got[1].RecordedAt.IsZero() {
		t.Errorf("entry missing session or timestamp: %+v", got[1])
	}

	if err := s.SaveFeedback(ctx, "", "x", recommend.SignalUp); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("empty session error = %v, want ErrEmptyKey", err)
	}
}

func TestLikedDislikedAttributes(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t, 0)
	ctx := context.Background()

	err := s.UpsertMedia(ctx, []recommend.MediaItem{
		{Title: "Heat", Type: recommend.MediaMovie, Genres: []string{"Crime", "Action"}, Directors: []string{"Michael Mann"}, Cast: []string{"Al Pacino"}},
		{Title: "Collateral", Type: recommend.MediaMovie, Genres: []string{"crime"}, Directors: []string{"Michael Mann"}},
		{Title: "Saw", Type: recommend.MediaMovie, Genres: []string{"Horror"}},
	})
	if err != nil {
		t.Fatalf("UpsertMedia() error = %v", err)
	}
	for title, sig := range map[string]recommend.Signal{
		"Heat":       recommend.SignalUp,
		"Collateral": recommend.SignalUp,
		"Saw":        recommend.SignalDown,
		"Unknown":    recommend.SignalDown,
	} {
		if err := s.SaveFeedback(ctx, "s", title, sig); err != nil {
			t.Fatal(err)
		}
	}

	liked, disliked, err := s.LikedDislikedAttributes(ctx, "s")
	if err != nil {
		t.Fatalf("LikedDislikedAttributes() error = %v", err)
	}
	wantLiked := recommend.AttributeSet{
		Genres:    []string{"action", "crime"},
		Directors: []string{"michael mann"},
		Cast:      []string{"al pacino"},
	}
	if !reflect.DeepEqual(liked, wantLiked) {
		t.Errorf("liked = %+v, want %+v", liked, wantLiked)
	}
	if !reflect.DeepEqual(disliked, recommend.AttributeSet{Genres: []string{"horror"}}) {
		t.Errorf("disliked = %+v", disliked)
	}
}

func TestUpsertMedia_ReplacesAndCounts(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t, 0)
	ctx := context.Background()

	items := []recommend.MediaItem{
		{Title: "Dune", Genres: []string{"Adventure"}},
		{Title: "Fleabag"},
		{Title: "Dune", Genres: []string{"Drama"}},
		{Title: ""},
	}
	if err := s.UpsertMedia(ctx, items); err != nil {
		t.Fatalf("UpsertMedia() error = %v", err)
	}
	if n, err := s.MediaCount(ctx); err != nil || n != 2 {
		t.Fatalf("MediaCount() = %d, %v; want 2", n, err)
	}

	if err := s.SaveFeedback(ctx, "s", "Dune", recommend.SignalUp); err != nil {
		t.Fatal(err)
	}
	liked, _, err := s.LikedDislikedAttributes(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(liked.Genres, []string{"drama"}) {
		t.Errorf("liked genres = %v, want the last write [drama]", liked.Genres)
	}
}

func TestHistory_NewestFirst(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	earlier := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Minute)

	page := func(session string, at time.Time, p int, titles ...string) []recommend.HistoryEntry {
		out := make([]recommend.HistoryEntry, len(titles))
		for i, title := range titles {
			out[i] = recommend.HistoryEntry{
				SessionID: session, Title: title, Moods: []string{"emotional"},
				Time: recommend.TimeUnder1h, Page: p, Rank: i + 1, RecommendedAt: at,
			}
		}
		return out
	}

	for _, batch := range [][]recommend.HistoryEntry{
		page("s", earlier, 1, "A", "B", "C"),
		page("s", later, 2, "D", "E"),
		page("s2", later, 1, "Z"),
	} {
		if err := s.RecordRecommendations(ctx, batch); err != nil {
			t.Fatalf("RecordRecommendations() error = %v", err)
		}
	}

	got, err := s.RecentRecommendations(ctx, "s", 4)
	if err != nil {
		t.Fatalf("RecentRecommendations() error = %v", err)
	}
	var titles []string
	for _, e := range got {
		titles = append(titles, e.Title)
	}
	if want := []string{"D", "E", "A", "B"}; !reflect.DeepEqual(titles, want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	if e := got[0]; e.Page != 2 || e.Rank != 1 || e.SessionID != "s" || !e.RecommendedAt.Equal(later) {
		t.Errorf("entry = %+v", e)
	}

	all, _ := s.RecentRecommendations(ctx, "s", 100)
	if len(all) != 5 {
		t.Errorf("len(all) = %d, want 5", len(all))
	}
	if none, _ := s.RecentRecommendations(ctx, "s", 0); len(none) != 0 {
		t.Errorf("limit 0 returned %d entries", len(none))
	}
}

func TestPingAndClose(t *testing.T) {
	t.Parallel()

	s, err := Open(config.DatabaseConfig{Driver: config.DriverBadger})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := s.RunValueLogGC(context.Background()); err != nil {
		t.Errorf("RunValueLogGC() in memory error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after Close() = nil, want error")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpen_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(config.DatabaseConfig{Driver: config.DriverBadger, Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()
	if err := s.UpsertMedia(ctx, []recommend.MediaItem{{Title: "Persisted"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(config.DatabaseConfig{Driver: config.DriverBadger, Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if n, _ := reopened.MediaCount(ctx); n != 1 {
		t.Errorf("MediaCount() after reopen = %d, want 1", n)
	}
}
