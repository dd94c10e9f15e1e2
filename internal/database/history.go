// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/moodie/internal/recommend"
)

// RecordRecommendations appends entries to the history table.
func (db *DB) RecordRecommendations(ctx context.Context, entries []recommend.HistoryEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { db.observe("record_history", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history insert: %w", err)
	}
	defer rollback(tx)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendation_history (session_id, title, moods, time_pref, page, score_rank, recommended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range entries {
		e := &entries[i]
		moods, err := encodeList(e.Moods)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			e.SessionID, e.Title, moods, string(e.Time), e.Page, e.Rank, e.RecommendedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history insert: %w", err)
	}
	return nil
}

// RecentRecommendations returns up to limit history entries for the session,
// newest first. Entries of one page share a timestamp and keep their rank order.
func (db *DB) RecentRecommendations(ctx context.Context, sessionID string, limit int) (entries []recommend.HistoryEntry, err error) {
	start := time.Now()
	defer func() { db.observe("recent_history", start, err) }()

	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT title, moods, time_pref, page, score_rank, recommended_at
		FROM recommendation_history
		WHERE session_id = $1
		ORDER BY recommended_at DESC, page DESC, score_rank ASC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer closeRows(rows, "recent_history")

	for rows.Next() {
		var (
			e            recommend.HistoryEntry
			moods, tpref string
			at           time.Time
		)
		if err := rows.Scan(&e.Title, &moods, &tpref, &e.Page, &e.Rank, &at); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.Moods, err = decodeList(moods); err != nil {
			return nil, err
		}
		e.SessionID = sessionID
		e.Time = recommend.TimePref(tpref)
		e.RecommendedAt = at.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
