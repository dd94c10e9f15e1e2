// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

var noShuffle = RankOptions{ShuffleWindow: 0, ComfortCount: 3, FallbackCount: 3}

func scored(pairs ...interface{}) []ScoredItem {
	out := make([]ScoredItem, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, ScoredItem{
			Item:  MediaItem{Title: pairs[i].(string)},
			Score: pairs[i+1].(int),
		})
	}
	return out
}

func TestRank_DropsNonPositiveAndSortsWithTitleTieBreak(t *testing.T) {
	t.Parallel()

	in := scored("Zodiac", 20, "Alien", 20, "Brick", 35, "Cube", 0, "Dune", -5, "Elf", 20)
	got := titles(Rank(in, nil, Preference{}, 2, nil, noShuffle))

	want := []string{"Brick", "Alien", "Elf", "Zodiac"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}
}

func TestRank_LaterPagesAreDeterministic(t *testing.T) {
	t.Parallel()

	in := make([]ScoredItem, 0, 30)
	for i := 0; i < 30; i++ {
		in = append(in, ScoredItem{Item: MediaItem{Title: fmt.Sprintf("T%02d", i)}, Score: 100 - i})
	}
	opts := RankOptions{ShuffleWindow: 10, ComfortCount: 3, FallbackCount: 3}

	a := Rank(in, nil, Preference{}, 2, rand.New(rand.NewSource(1)), opts)
	b := Rank(in, nil, Preference{}, 2, rand.New(rand.NewSource(2)), opts)
	if !reflect.DeepEqual(titles(a), titles(b)) {
		t.Error("page 2 ordering depends on the random source")
	}
}

func TestRank_PageOneShufflesOnlyTheWindow(t *testing.T) {
	t.Parallel()

	in := make([]ScoredItem, 0, 25)
	for i := 0; i < 25; i++ {
		in = append(in, ScoredItem{Item: MediaItem{Title: fmt.Sprintf("T%02d", i)}, Score: 100 - i})
	}
	opts := RankOptions{ShuffleWindow: 10}

	for seed := int64(0); seed < 20; seed++ {
		got := titles(Rank(in, nil, Preference{}, 1, rand.New(rand.NewSource(seed)), opts))

		head := append([]string(nil), got[:10]...)
		sort.Strings(head)
		for i := 0; i < 10; i++ {
			if head[i] != fmt.Sprintf("T%02d", i) {
				t.Fatalf("seed %d: window holds %v, want the top 10", seed, head)
			}
		}
		for i := 10; i < len(got); i++ {
			if got[i] != fmt.Sprintf("T%02d", i) {
				t.Fatalf("seed %d: index %d = %s, order beyond the window must be by score", seed, i, got[i])
			}
		}
	}
}

func TestRank_SurpriseShufflesEverythingOnPageOne(t *testing.T) {
	t.Parallel()

	in := make([]ScoredItem, 0, 25)
	for i := 0; i < 25; i++ {
		in = append(in, ScoredItem{Item: MediaItem{Title: fmt.Sprintf("T%02d", i)}, Score: 100 - i})
	}
	pref := Preference{Surprise: true}

	moved := false
	for seed := int64(0); seed < 10 && !moved; seed++ {
		got := titles(Rank(in, nil, pref, 1, rand.New(rand.NewSource(seed)), RankOptions{ShuffleWindow: 10}))
		for i := 10; i < len(got); i++ {
			if got[i] != fmt.Sprintf("T%02d", i) {
				moved = true
				break
			}
		}
	}
	if !moved {
		t.Error("surprise never reordered entries beyond the shuffle window")
	}
}

func TestRank_ComfortPrependsMostRewatched(t *testing.T) {
	t.Parallel()

	catalog := []MediaItem{
		{Title: "Once", ViewCount: 1},
		{Title: "Thrice", ViewCount: 3},
		{Title: "Often", ViewCount: 9},
		{Title: "Always", ViewCount: 9},
		{Title: "Sometimes", ViewCount: 4},
	}
	in := []ScoredItem{
		{Item: catalog[0], Score: 50},
		{Item: catalog[4], Score: 40},
	}

	got := titles(Rank(in, catalog, Preference{ComfortMode: true}, 2, nil, noShuffle))

	// Comfort picks: viewCount >= 3, most viewed first, ties by title; then
	// the ranked list with the repeated "Sometimes" dropped.
	want := []string{"Always", "Often", "Sometimes", "Once"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}
}

func TestRank_FallbackWhenEmpty(t *testing.T) {
	t.Parallel()

	catalog := []MediaItem{
		{Title: "B", ViewCount: 2},
		{Title: "A", ViewCount: 2},
		{Title: "C", ViewCount: 0},
		{Title: "D", ViewCount: 7},
	}
	in := scored("B", -10, "A", 0)

	got := titles(Rank(in, catalog, Preference{}, 1, rand.New(rand.NewSource(1)), noShuffle))
	want := []string{"D", "A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}
}

func TestRank_Dedup(t *testing.T) {
	t.Parallel()

	in := scored("Same", 30, "Other", 20, "Same", 10)
	got := titles(Rank(in, nil, Preference{}, 2, nil, noShuffle))
	want := []string{"Same", "Other"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	list := []MediaItem{{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}, {Title: "5"}}

	tests := []struct {
		page, size  int
		want        []string
		wantHasMore bool
	}{
		{1, 3, []string{"1", "2", "3"}, true},
		{2, 3, []string{"4", "5"}, false},
		{3, 3, []string{}, false},
		{1, 5, []string{"1", "2", "3", "4", "5"}, false},
		{5, 1, []string{"5"}, false},
		{4, 1, []string{"4"}, true},
		{0, 3, []string{}, false},
		{1, 0, []string{}, false},
		{1 << 62, 4, []string{}, false},
		{math.MaxInt, math.MaxInt, []string{}, false},
		{1, math.MaxInt, []string{"1", "2", "3", "4", "5"}, false},
	}

	for _, tt := range tests {
		got, hasMore := Paginate(list, tt.page, tt.size)
		if !reflect.DeepEqual(titles(got), tt.want) || hasMore != tt.wantHasMore {
			t.Errorf("Paginate(page=%d, size=%d) = %v, %v; want %v, %v",
				tt.page, tt.size, titles(got), hasMore, tt.want, tt.wantHasMore)
		}
	}
}

func TestPaginate_PastTheEndOfNonEmptyList(t *testing.T) {
	t.Parallel()

	// Only the first page is guaranteed non-empty; later pages run dry.
	list := []MediaItem{{Title: "only"}}
	if got, more := Paginate(list, 1, 10); len(got) != 1 || more {
		t.Errorf("page 1 = %v, %v", titles(got), more)
	}
	got, more := Paginate(list, 2, 10)
	if got == nil || len(got) != 0 || more {
		t.Errorf("page 2 = %#v, %v; want empty non-nil, false", got, more)
	}
}
