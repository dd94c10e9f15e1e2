// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"reflect"
	"testing"
)

func titles(items []MediaItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Title
	}
	return out
}

func TestFitsTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minutes float64
		pref    TimePref
		want    bool
	}{
		{45, TimeUnder1h, true},
		{60, TimeUnder1h, true},
		{60.5, TimeUnder1h, false},
		{60, Time1to2h, false},
		{61, Time1to2h, true},
		{125, Time1to2h, true},
		{125.5, Time1to2h, false},
		{125, Time2Plus, false},
		{126, Time2Plus, true},
		{300, TimeAny, true},
		{300, TimeOpen, true},
		{0, TimeAny, true},
	}

	for _, tt := range tests {
		if got := fitsTime(tt.minutes, tt.pref); got != tt.want {
			t.Errorf("fitsTime(%v, %s) = %v, want %v", tt.minutes, tt.pref, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	catalog := []MediaItem{
		{Title: "Airplane!", Type: MediaMovie, Genres: []string{"Comedy"}, Duration: 88},
		{Title: "Heat", Type: MediaMovie, Genres: []string{"Crime", "Action"}, Duration: 170},
		{Title: "Fleabag", Type: MediaShow, Genres: []string{"Comedy", "Drama"}, Duration: 27},
		{Title: "Dark", Type: MediaShow, Genres: []string{"Mystery", "Science Fiction"}, Duration: 55},
		{Title: "Amélie", Type: MediaMovie, Genres: []string{"Romance"}, Duration: 122},
	}

	tests := []struct {
		name string
		pref Preference
		want []string
	}{
		{
			name: "no constraints keeps catalog order",
			pref: Normalize(PreferenceInput{}),
			want: []string{"Airplane!", "Heat", "Fleabag", "Dark", "Amélie"},
		},
		{
			name: "format",
			pref: Normalize(PreferenceInput{Format: "show"}),
			want: []string{"Fleabag", "Dark"},
		},
		{
			name: "time bucket",
			pref: Normalize(PreferenceInput{Time: "1_2h"}),
			want: []string{"Airplane!", "Amélie"},
		},
		{
			name: "genres are case-insensitive",
			pref: Normalize(PreferenceInput{Genres: []string{"COMEDY"}}),
			want: []string{"Airplane!", "Fleabag"},
		},
		{
			name: "moods expand to genre tags",
			pref: Normalize(PreferenceInput{Moods: []string{"dramatic"}}),
			want: []string{"Dark"},
		},
		{
			name: "genres take precedence over moods",
			pref: Normalize(PreferenceInput{Moods: []string{"dramatic"}, Genres: []string{"crime"}}),
			want: []string{"Heat"},
		},
		{
			name: "rules combine",
			pref: Normalize(PreferenceInput{Format: "show", Time: "under_1h", Moods: []string{"light_funny"}}),
			want: []string{"Fleabag"},
		},
		{
			name: "nothing matches",
			pref: Normalize(PreferenceInput{Genres: []string{"western"}}),
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := titles(Filter(catalog, tt.pref))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}
