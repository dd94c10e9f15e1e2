// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"math/rand"
	"sort"
)

// RankOptions sizes the ranking stages.
type RankOptions struct {
	// ShuffleWindow is how many leading entries page 1 shuffles when
	// surprise is off.
	ShuffleWindow int

	// ComfortCount is how many rewatched favorites comfort mode prepends.
	ComfortCount int

	// FallbackCount is how many most-watched items stand in for an empty list.
	FallbackCount int
}

// Rank orders scored items into the full recommendation list:
//
//  1. drop score <= 0
//  2. sort by score descending, then title
//  3. page 1 only: shuffle everything (surprise) or the leading window
//  4. comfort mode: prepend the catalog's most rewatched items
//  5. empty: substitute the catalog's most watched items
//  6. drop repeated titles, keeping the first
//
// The shuffle is deliberate: page 1 varies between visits while later pages
// stay stable. rng must be non-nil when page is 1.
//
//nolint:gocritic // hugeParam: pref passed by value for immutability
func Rank(scored []ScoredItem, catalog []MediaItem, pref Preference, page int, rng *rand.Rand, opts RankOptions) []MediaItem {
	kept := make([]ScoredItem, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Item.Title < kept[j].Item.Title
	})

	list := make([]MediaItem, len(kept))
	for i := range kept {
		list[i] = kept[i].Item
	}

	if page == 1 && rng != nil {
		n := len(list)
		if !pref.Surprise && opts.ShuffleWindow < n {
			n = opts.ShuffleWindow
		}
		if n > 1 {
			rng.Shuffle(n, func(i, j int) { list[i], list[j] = list[j], list[i] })
		}
	}

	if pref.ComfortMode {
		picks := mostWatched(catalog, comfortMinViews, opts.ComfortCount)
		list = append(picks, list...)
	}

	if len(list) == 0 {
		list = mostWatched(catalog, 0, opts.FallbackCount)
	}

	return dedupeByTitle(list)
}

// Paginate returns page (1-based) of size items and whether more follow.
// A page past the end is empty, never an error.
func Paginate(list []MediaItem, page, size int) ([]MediaItem, bool) {
	if page < 1 || size < 1 {
		return []MediaItem{}, false
	}
	// Bound page before multiplying so huge client values cannot overflow.
	pages := len(list) / size
	if len(list)%size != 0 {
		pages++
	}
	if page > pages {
		return []MediaItem{}, false
	}

	start := (page - 1) * size
	end := len(list)
	if size < end-start {
		end = start + size
	}
	hasMore := end < len(list)

	out := make([]MediaItem, end-start)
	copy(out, list[start:end])
	return out, hasMore
}

// mostWatched returns up to n items with at least minViews views, most
// viewed first, ties broken by title.
func mostWatched(catalog []MediaItem, minViews, n int) []MediaItem {
	if n <= 0 {
		return nil
	}

	candidates := make([]MediaItem, 0, len(catalog))
	for i := range catalog {
		if catalog[i].ViewCount >= minViews {
			candidates = append(candidates, catalog[i])
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ViewCount != candidates[j].ViewCount {
			return candidates[i].ViewCount > candidates[j].ViewCount
		}
		return candidates[i].Title < candidates[j].Title
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func dedupeByTitle(list []MediaItem) []MediaItem {
	seen := make(map[string]struct{}, len(list))
	out := list[:0:0]
	for i := range list {
		if _, dup := seen[list[i].Title]; dup {
			continue
		}
		seen[list[i].Title] = struct{}{}
		out = append(out, list[i])
	}
	return out
}
