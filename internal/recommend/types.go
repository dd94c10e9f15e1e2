// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"context"
	"time"
)

// Media types.
const (
	MediaMovie = "movie"
	MediaShow  = "show"
)

// MediaItem is one catalog entry as fetched for a single request.
// Title is the identity within a snapshot. JSON names match the web client.
type MediaItem struct {
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	Genres        []string   `json:"genres"`
	Duration      float64    `json:"duration"` // minutes
	ViewCount     int        `json:"viewCount"`
	LastViewedAt  *time.Time `json:"lastViewedAt"`
	Rating        float64    `json:"rating,omitempty"`
	Summary       string     `json:"summary"`
	PosterURL     string     `json:"posterUrl,omitempty"`
	Year          int        `json:"year,omitempty"`
	ContentRating string     `json:"contentRating,omitempty"`
	Directors     []string   `json:"directors"`
	Cast          []string   `json:"cast"`
	Unwatched     bool       `json:"unwatched"`
}

// TimePref is the viewing-time bucket a user has available.
type TimePref string

// Time buckets. TimeOpen means "no limit, happy to binge".
const (
	TimeAny     TimePref = "any"
	TimeUnder1h TimePref = "under_1h"
	Time1to2h   TimePref = "1_2h"
	Time2Plus   TimePref = "2plus"
	TimeOpen    TimePref = "open"
)

// Format restricts the catalog to movies, shows, or both.
type Format string

// Formats.
const (
	FormatAny   Format = "any"
	FormatMovie Format = "movie"
	FormatShow  Format = "show"
)

// PreferenceInput is the raw preference as submitted by a client.
// Every field is optional; Normalize maps it to a Preference.
type PreferenceInput struct {
	Time        string   `json:"time"`
	Moods       []string `json:"moods"`
	Genres      []string `json:"genres"`
	Format      string   `json:"format"`
	ComfortMode bool     `json:"comfortMode"`
	Surprise    bool     `json:"surprise"`
}

// Preference is a canonical preference: known time and format, known moods
// in submission order without duplicates, and lowercased sorted genres.
type Preference struct {
	Time        TimePref
	Moods       []string
	Genres      []string
	Format      Format
	ComfortMode bool
	Surprise    bool
}

// Signal is a thumbs up or down on a title.
type Signal string

// Feedback signals.
const (
	SignalUp   Signal = "up"
	SignalDown Signal = "down"
)

// ParseSignal accepts "up" or "down".
func ParseSignal(s string) (Signal, error) {
	switch Signal(s) {
	case SignalUp, SignalDown:
		return Signal(s), nil
	default:
		return "", ErrInvalidSignal
	}
}

// FeedbackEntry is the latest signal a session gave a title.
type FeedbackEntry struct {
	SessionID  string
	Title      string
	Signal     Signal
	RecordedAt time.Time
}

// AttributeSet groups the people and genres attached to liked or disliked
// titles. Values are lowercased.
type AttributeSet struct {
	Genres    []string
	Directors []string
	Cast      []string
}

// IsEmpty reports whether the set has no attributes at all.
func (a AttributeSet) IsEmpty() bool {
	return len(a.Genres) == 0 && len(a.Directors) == 0 && len(a.Cast) == 0
}

// ScoredItem pairs an item with its score for one ranking pass.
type ScoredItem struct {
	Item  MediaItem
	Score int
}

// Page is one page of recommendations, exactly as served and cached.
type Page struct {
	Recommendations []MediaItem `json:"recommendations"`
	HasMore         bool        `json:"hasMore"`
}

// HistoryEntry records that a title was shown to a session.
type HistoryEntry struct {
	SessionID     string
	Title         string
	Moods         []string
	Time          TimePref
	Page          int
	Rank          int // 1-based position within the page
	RecommendedAt time.Time
}

// CatalogSource supplies the media catalog. Any error fails the request.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, format Format) ([]MediaItem, error)
}

// FeedbackStore persists per-session feedback.
type FeedbackStore interface {
	// SaveFeedback records signal for title, replacing any earlier signal.
	SaveFeedback(ctx context.Context, sessionID, title string, signal Signal) error

	// FeedbackForSession returns the latest signal per title.
	FeedbackForSession(ctx context.Context, sessionID string) ([]FeedbackEntry, error)

	// LikedDislikedAttributes derives attributes of up- and down-voted titles
	// from the synced media table. Titles unknown to the media table
	// contribute nothing.
	LikedDislikedAttributes(ctx context.Context, sessionID string) (liked, disliked AttributeSet, err error)
}

// HistoryStore keeps a log of served recommendations.
type HistoryStore interface {
	RecordRecommendations(ctx context.Context, entries []HistoryEntry) error
	RecentRecommendations(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error)
}
