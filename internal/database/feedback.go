// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/moodie/internal/recommend"
)

// SaveFeedback stores signal for (sessionID, title), replacing any earlier
// signal for the same pair.
func (db *DB) SaveFeedback(ctx context.Context, sessionID, title string, signal recommend.Signal) (err error) {
	start := time.Now()
	defer func() { db.observe("save_feedback", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO feedback (session_id, title, signal, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, title) DO UPDATE SET
			signal = EXCLUDED.signal,
			recorded_at = EXCLUDED.recorded_at`,
		sessionID, title, string(signal), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// FeedbackForSession returns the session's signals ordered by title.
func (db *DB) FeedbackForSession(ctx context.Context, sessionID string) (entries []recommend.FeedbackEntry, err error) {
	start := time.Now()
	defer func() { db.observe("feedback_for_session", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT title, signal, recorded_at
		FROM feedback
		WHERE session_id = $1
		ORDER BY title`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer closeRows(rows, "feedback_for_session")

	for rows.Next() {
		var (
			title, signal string
			recordedAt    time.Time
		)
		if err := rows.Scan(&title, &signal, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		entries = append(entries, recommend.FeedbackEntry{
			SessionID:  sessionID,
			Title:      title,
			Signal:     recommend.Signal(signal),
			RecordedAt: recordedAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return entries, nil
}

// LikedDislikedAttributes joins the session's feedback with the media table.
// Up-voted titles contribute to liked, down-voted ones to disliked; titles the
// media table does not know contribute nothing.
func (db *DB) LikedDislikedAttributes(ctx context.Context, sessionID string) (liked, disliked recommend.AttributeSet, err error) {
	start := time.Now()
	defer func() { db.observe("liked_disliked", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.signal, m.genres, m.directors, m.cast_members
		FROM feedback f
		JOIN media m ON m.title = f.title
		WHERE f.session_id = $1`, sessionID)
	if err != nil {
		return liked, disliked, fmt.Errorf("query attributes: %w", err)
	}
	defer closeRows(rows, "liked_disliked")

	up, down := newAttrCollector(), newAttrCollector()
	for rows.Next() {
		var signal, genres, directors, cast string
		if err := rows.Scan(&signal, &genres, &directors, &cast); err != nil {
			return liked, disliked, fmt.Errorf("scan attributes: %w", err)
		}

		target := up
		if recommend.Signal(signal) == recommend.SignalDown {
			target = down
		}
		if err := target.add(genres, directors, cast); err != nil {
			return liked, disliked, err
		}
	}
	if err := rows.Err(); err != nil {
		return liked, disliked, fmt.Errorf("iterate attributes: %w", err)
	}

	return up.set(), down.set(), nil
}

// attrCollector accumulates lowercased, de-duplicated attribute values.
type attrCollector struct {
	genres, directors, cast map[string]struct{}
}

func newAttrCollector() *attrCollector {
	return &attrCollector{
		genres:    make(map[string]struct{}),
		directors: make(map[string]struct{}),
		cast:      make(map[string]struct{}),
	}
}

func (c *attrCollector) add(genres, directors, cast string) error {
	for _, col := range []struct {
		raw string
		dst map[string]struct{}
	}{
		{genres, c.genres},
		{directors, c.directors},
		{cast, c.cast},
	} {
		values, err := decodeList(col.raw)
		if err != nil {
			return err
		}
		for _, v := range values {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				col.dst[v] = struct{}{}
			}
		}
	}
	return nil
}

func (c *attrCollector) set() recommend.AttributeSet {
	return recommend.AttributeSet{
		Genres:    sortedKeys(c.genres),
		Directors: sortedKeys(c.directors),
		Cast:      sortedKeys(c.cast),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
