// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/tomtom215/moodie/internal/logging"
)

// closeQuietly closes a resource on an error path where the Close error is
// not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// closeRows closes a result set and logs a failure.
func closeRows(rows *sql.Rows, operation string) {
	if err := rows.Close(); err != nil {
		logging.Warn().Str("operation", operation).Err(err).Msg("Failed to close rows")
	}
}

// rollback aborts tx unless it was already committed.
func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Warn().Err(err).Msg("Failed to roll back transaction")
	}
}
