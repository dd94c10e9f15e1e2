// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodie/internal/recommend"
)

// UpsertMedia writes the catalog snapshot into the media table in a single
// transaction. A title that appears more than once keeps its last occurrence.
func (db *DB) UpsertMedia(ctx context.Context, items []recommend.MediaItem) (err error) {
	start := time.Now()
	defer func() { db.observe("upsert_media", start, err) }()

	items = lastByTitle(items)
	if len(items) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin media upsert: %w", err)
	}
	defer rollback(tx)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO media (title, type, genres, directors, cast_members, duration, view_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (title) DO UPDATE SET
			type = EXCLUDED.type,
			genres = EXCLUDED.genres,
			directors = EXCLUDED.directors,
			cast_members = EXCLUDED.cast_members,
			duration = EXCLUDED.duration,
			view_count = EXCLUDED.view_count,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare media upsert: %w", err)
	}
	defer closeQuietly(stmt)

	now := time.Now().UTC()
	for i := range items {
		item := &items[i]
		genres, err := encodeList(item.Genres)
		if err != nil {
			return err
		}
		directors, err := encodeList(item.Directors)
		if err != nil {
			return err
		}
		cast, err := encodeList(item.Cast)
		if err != nil {
			return err
		}

		if _, err := stmt.ExecContext(ctx,
			item.Title, item.Type, genres, directors, cast, item.Duration, item.ViewCount, now,
		); err != nil {
			return fmt.Errorf("upsert media %q: %w", item.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit media upsert: %w", err)
	}
	return nil
}

// MediaCount returns the number of titles in the media table.
func (db *DB) MediaCount(ctx context.Context) (count int, err error) {
	start := time.Now()
	defer func() { db.observe("media_count", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM media`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return count, nil
}

func lastByTitle(items []recommend.MediaItem) []recommend.MediaItem {
	index := make(map[string]int, len(items))
	out := make([]recommend.MediaItem, 0, len(items))
	for i := range items {
		if items[i].Title == "" {
			continue
		}
		if pos, ok := index[items[i].Title]; ok {
			out[pos] = items[i]
			continue
		}
		index[items[i].Title] = len(out)
		out = append(out, items[i])
	}
	return out
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return values, nil
}
