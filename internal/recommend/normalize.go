// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"sort"
	"strings"
)

// Normalize maps raw input to a canonical Preference. It never fails:
// unknown values fall back to defaults and unknown moods are dropped.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func Normalize(in PreferenceInput) Preference {
	return Preference{
		Time:        normalizeTime(in.Time),
		Moods:       normalizeMoods(in.Moods),
		Genres:      normalizeGenres(in.Genres),
		Format:      normalizeFormat(in.Format),
		ComfortMode: in.ComfortMode,
		Surprise:    in.Surprise,
	}
}

func normalizeTime(s string) TimePref {
	switch TimePref(strings.ToLower(strings.TrimSpace(s))) {
	case TimeUnder1h:
		return TimeUnder1h
	case Time1to2h:
		return Time1to2h
	case Time2Plus:
		return Time2Plus
	case TimeOpen, "binge":
		return TimeOpen
	default:
		return TimeAny
	}
}

func normalizeFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMovie:
		return FormatMovie
	case FormatShow:
		return FormatShow
	default:
		return FormatAny
	}
}

// normalizeMoods keeps known moods in first-seen order.
func normalizeMoods(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, m := range in {
		m = strings.ToLower(strings.TrimSpace(m))
		if !IsKnownMood(m) {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// normalizeGenres lowercases, trims, drops blanks and duplicates, and sorts.
func normalizeGenres(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, g := range in {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// NormalizePaging clamps page to at least 1 and size into [1, maxSize],
// substituting defaultSize for a size below 1.
func NormalizePaging(page, size, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}
