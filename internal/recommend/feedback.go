// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package recommend

import (
	"context"
	"fmt"
	"strings"
)

// SessionFeedback is everything scoring needs from a session's feedback.
// It is derived on every request and never cached.
type SessionFeedback struct {
	Signals  map[string]Signal // title -> latest signal
	Liked    AttributeSet
	Disliked AttributeSet
}

// AggregateFeedback loads a session's signals and the attributes of the
// titles it voted on.
func AggregateFeedback(ctx context.Context, store FeedbackStore, sessionID string) (SessionFeedback, error) {
	entries, err := store.FeedbackForSession(ctx, sessionID)
	if err != nil {
		return SessionFeedback{}, fmt.Errorf("feedback for session: %w", err)
	}

	signals := make(map[string]Signal, len(entries))
	for _, e := range entries {
		signals[e.Title] = e.Signal
	}

	// Stored attributes come from the synced media table and are empty until
	// the session has voted on something.
	if len(entries) == 0 {
		return SessionFeedback{Signals: signals}, nil
	}

	liked, disliked, err := store.LikedDislikedAttributes(ctx, sessionID)
	if err != nil {
		return SessionFeedback{}, fmt.Errorf("liked/disliked attributes: %w", err)
	}

	return SessionFeedback{
		Signals:  signals,
		Liked:    liked,
		Disliked: disliked,
	}, nil
}

// WithCatalog adds the attributes of voted titles present in catalog to the
// stored liked and disliked sets. The media table only knows titles once the
// library has been synced; the catalog fetched for a request always does.
func (f SessionFeedback) WithCatalog(catalog []MediaItem) SessionFeedback {
	if len(f.Signals) == 0 {
		return f
	}

	liked, disliked := newAttrBuilder(f.Liked), newAttrBuilder(f.Disliked)
	for i := range catalog {
		switch f.Signals[catalog[i].Title] {
		case SignalUp:
			liked.add(&catalog[i])
		case SignalDown:
			disliked.add(&catalog[i])
		}
	}

	f.Liked = liked.set()
	f.Disliked = disliked.set()
	return f
}

// attrBuilder unions lowercased attributes, keeping first-seen order.
type attrBuilder struct {
	genres, directors, cast []string
	seen                    map[string]struct{}
}

func newAttrBuilder(base AttributeSet) *attrBuilder {
	b := &attrBuilder{seen: make(map[string]struct{})}
	b.genres = b.merge(nil, "g", base.Genres)
	b.directors = b.merge(nil, "d", base.Directors)
	b.cast = b.merge(nil, "c", base.Cast)
	return b
}

func (b *attrBuilder) add(item *MediaItem) {
	b.genres = b.merge(b.genres, "g", item.Genres)
	b.directors = b.merge(b.directors, "d", item.Directors)
	b.cast = b.merge(b.cast, "c", item.Cast)
}

func (b *attrBuilder) merge(dst []string, kind string, values []string) []string {
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		k := kind + "\x00" + v
		if _, dup := b.seen[k]; dup {
			continue
		}
		b.seen[k] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}

func (b *attrBuilder) set() AttributeSet {
	return AttributeSet{Genres: b.genres, Directors: b.directors, Cast: b.cast}
}
