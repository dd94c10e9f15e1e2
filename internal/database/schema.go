// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

/*
schema.go - Table Definitions

Every statement is accepted by both DuckDB and Postgres. List-valued columns
(genres, directors, cast_members, moods) hold JSON arrays as text so neither
dialect's array type leaks into the queries.

Tables:
  - feedback: latest thumbs signal per (session_id, title)
  - media: catalog snapshot written by the library sync, keyed by title
  - recommendation_history: every recommendation served, newest read first
*/

package database

import (
	"context"
	"fmt"
	"time"
)

const schemaTimeout = 60 * time.Second

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS feedback (
		session_id  VARCHAR NOT NULL,
		title       VARCHAR NOT NULL,
		signal      VARCHAR NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, title)
	)`,
	`CREATE TABLE IF NOT EXISTS media (
		title        VARCHAR PRIMARY KEY,
		type         VARCHAR NOT NULL,
		genres       VARCHAR NOT NULL DEFAULT '[]',
		directors    VARCHAR NOT NULL DEFAULT '[]',
		cast_members VARCHAR NOT NULL DEFAULT '[]',
		duration     FLOAT8 NOT NULL DEFAULT 0,
		view_count   INTEGER NOT NULL DEFAULT 0,
		updated_at   TIMESTAMP NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS recommendation_history_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS recommendation_history (
		id             BIGINT PRIMARY KEY DEFAULT nextval('recommendation_history_id_seq'),
		session_id     VARCHAR NOT NULL,
		title          VARCHAR NOT NULL,
		moods          VARCHAR NOT NULL DEFAULT '[]',
		time_pref      VARCHAR NOT NULL,
		page           INTEGER NOT NULL,
		score_rank     INTEGER NOT NULL,
		recommended_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_session ON recommendation_history (session_id, recommended_at)`,
}

func (db *DB) createSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
