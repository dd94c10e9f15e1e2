// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

const (
	maxBodyBytes        = 64 << 10
	defaultHistoryLimit = 20
)

var errMalformedBody = errors.New("malformed JSON body")

// FeedbackRequest is the body of POST /api/v1/feedback. Timestamp is the
// client's clock and is only checked for format; the server records its
// own time.
type FeedbackRequest struct {
	Title     string `json:"title" validate:"required,notblank,max=500"`
	Feedback  string `json:"feedback" validate:"required,oneof=up down"`
	Timestamp string `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// HistoryRequest holds the query parameters of GET /api/v1/history.
type HistoryRequest struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// decodeBody reads at most maxBodyBytes and decodes them into v. An empty
// or whitespace-only body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	return nil
}
