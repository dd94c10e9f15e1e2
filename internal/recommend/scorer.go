// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"math/rand"
	"strings"
)

// Score weights.
const (
	pointsComfort       = 30
	pointsNovelty       = 10
	pointsTimeFit       = 10
	pointsTimeMiss      = 5
	pointsMoodGenre     = 10
	pointsMoodSummary   = 5
	pointsGenreMatch    = 8
	pointsFormatMatch   = 5
	pointsFeedbackUp    = 15
	pointsFeedbackDown  = -20
	pointsLikedGenre    = 6
	pointsLikedDirector = 4
	pointsLikedCast     = 2
	pointsDisGenre      = -8
	pointsDisDirector   = -5
	pointsDisCast       = -3
	pointsBingeUnseen   = 10
	pointsBingeStarted  = 5

	surpriseBaseMax  = 5 // inclusive
	surpriseBonusMax = 8 // inclusive

	comfortMinViews = 3
)

// ScoreOptions toggles optional signals.
type ScoreOptions struct {
	// BingeShowBonus favors unseen or barely started shows when the user has
	// open-ended time.
	BingeShowBonus bool
}

// attrIndex is an AttributeSet as lowercase lookup sets.
type attrIndex struct {
	genres    map[string]struct{}
	directors map[string]struct{}
	cast      map[string]struct{}
}

func newAttrIndex(a AttributeSet) attrIndex {
	return attrIndex{
		genres:    toSet(a.Genres),
		directors: toSet(a.Directors),
		cast:      toSet(a.Cast),
	}
}

// Scorer scores items for one request. It is not safe for concurrent use
// because it draws from the request's random source.
type Scorer struct {
	pref     Preference
	moods    moodExpansion
	genres   map[string]struct{}
	feedback map[string]Signal
	liked    attrIndex
	disliked attrIndex
	rng      *rand.Rand
	opts     ScoreOptions
}

// NewScorer prepares lookups for pref and the session's feedback. rng is
// only drawn from when pref.Surprise is set.
//
//nolint:gocritic // hugeParam: values passed by value for immutability
func NewScorer(pref Preference, feedback map[string]Signal, liked, disliked AttributeSet, rng *rand.Rand, opts ScoreOptions) *Scorer {
	if feedback == nil {
		feedback = map[string]Signal{}
	}
	return &Scorer{
		pref:     pref,
		moods:    expandMoods(pref.Moods),
		genres:   toSet(pref.Genres),
		feedback: feedback,
		liked:    newAttrIndex(liked),
		disliked: newAttrIndex(disliked),
		rng:      rng,
		opts:     opts,
	}
}

// Score returns the item's integer score. Scores may be negative.
func (s *Scorer) Score(item *MediaItem) int {
	score := 0

	if s.pref.ComfortMode {
		if item.ViewCount >= comfortMinViews {
			score += pointsComfort
		}
	} else if item.ViewCount == 0 {
		score += pointsNovelty
	}

	if fitsTime(item.Duration, s.pref.Time) {
		score += pointsTimeFit
	} else {
		score += pointsTimeMiss
	}

	moodGenreHit := intersects(item.Genres, s.moods.genres)
	if moodGenreHit {
		score += pointsMoodGenre
	} else if summaryMentions(item.Summary, s.moods.summaryTerms) {
		score += pointsMoodSummary
	}

	if intersects(item.Genres, s.genres) {
		score += pointsGenreMatch
	}

	if matchesFormat(item, s.pref.Format) {
		score += pointsFormatMatch
	}

	switch s.feedback[item.Title] {
	case SignalUp:
		score += pointsFeedbackUp
	case SignalDown:
		score += pointsFeedbackDown
	}

	likedGenreHit := intersects(item.Genres, s.liked.genres)
	if likedGenreHit {
		score += pointsLikedGenre
	}
	if intersects(item.Directors, s.liked.directors) {
		score += pointsLikedDirector
	}
	if intersects(item.Cast, s.liked.cast) {
		score += pointsLikedCast
	}
	if intersects(item.Genres, s.disliked.genres) {
		score += pointsDisGenre
	}
	if intersects(item.Directors, s.disliked.directors) {
		score += pointsDisDirector
	}
	if intersects(item.Cast, s.disliked.cast) {
		score += pointsDisCast
	}

	if s.opts.BingeShowBonus && s.pref.Time == TimeOpen && item.Type == MediaShow {
		switch {
		case item.ViewCount == 0:
			score += pointsBingeUnseen
		case item.ViewCount < comfortMinViews:
			score += pointsBingeStarted
		}
	}

	if s.pref.Surprise && s.rng != nil {
		score += s.rng.Intn(surpriseBaseMax + 1)
		if !likedGenreHit && !moodGenreHit {
			score += s.rng.Intn(surpriseBonusMax + 1)
		}
	}

	return score
}

// ScoreAll scores items in order.
func (s *Scorer) ScoreAll(items []MediaItem) []ScoredItem {
	out := make([]ScoredItem, len(items))
	for i := range items {
		out[i] = ScoredItem{Item: items[i], Score: s.Score(&items[i])}
	}
	return out
}

// summaryMentions reports whether any term is a case-insensitive substring
// of summary. Terms are already lowercase.
func summaryMentions(summary string, terms []string) bool {
	if summary == "" || len(terms) == 0 {
		return false
	}
	lower := strings.ToLower(summary)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
