// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import "strings"

// Duration bucket edges in minutes.
const (
	shortMaxMinutes  = 60
	mediumMaxMinutes = 125
)

// Filter returns the items that pass every hard constraint in pref, in
// catalog order. Rules are applied in order and an item is rejected at the
// first failure:
//
//  1. format
//  2. duration bucket
//  3. genre overlap, when genres were requested
//  4. mood genre-tag overlap, only when no genres were requested
//
// Filter may return an empty slice; the engine then falls back to the
// unfiltered catalog.
//
//nolint:gocritic // hugeParam: pref passed by value for immutability
func Filter(items []MediaItem, pref Preference) []MediaItem {
	wantGenres := toSet(pref.Genres)
	moods := expandMoods(pref.Moods)

	out := make([]MediaItem, 0, len(items))
	for i := range items {
		item := &items[i]
		if !matchesFormat(item, pref.Format) {
			continue
		}
		if !fitsTime(item.Duration, pref.Time) {
			continue
		}
		if len(wantGenres) > 0 {
			if !intersects(item.Genres, wantGenres) {
				continue
			}
		} else if !moods.empty() && !intersects(item.Genres, moods.genres) {
			continue
		}
		out = append(out, *item)
	}
	return out
}

func matchesFormat(item *MediaItem, f Format) bool {
	return f == FormatAny || item.Type == string(f)
}

// fitsTime reports whether a duration in minutes falls in the bucket.
func fitsTime(minutes float64, t TimePref) bool {
	switch t {
	case TimeUnder1h:
		return minutes <= shortMaxMinutes
	case Time1to2h:
		return minutes > shortMaxMinutes && minutes <= mediumMaxMinutes
	case Time2Plus:
		return minutes > mediumMaxMinutes
	default:
		return true
	}
}

// intersects reports whether any value, lowercased, is in want.
func intersects(values []string, want map[string]struct{}) bool {
	if len(want) == 0 {
		return false
	}
	for _, v := range values {
		if _, ok := want[strings.ToLower(v)]; ok {
			return true
		}
	}
	return false
}

// toSet builds a lowercase set.
func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
