// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/moodie/internal/models"
	"github.com/tomtom215/moodie/internal/recommend"
)

// Recommend handles POST /api/v1/recommend?page=&size=.
//
// The body is a recommend.PreferenceInput; a missing body means defaults.
// Out-of-range page and size values are clamped by the engine, so only
// malformed JSON is rejected here.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var in recommend.PreferenceInput
	if err := decodeBody(w, r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidInput, "Request body must be a JSON object", nil)
		return
	}

	page := getIntParam(r, "page", 1)
	size := getIntParam(r, "size", 0)

	result, err := h.engine.Recommend(r.Context(), SessionIDFromContext(r.Context()), in, page, size)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "no-store", result)
}

// Feedback handles POST /api/v1/feedback.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req FeedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidInput, "Request body must be a JSON object", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	title := strings.TrimSpace(req.Title)
	signal := recommend.Signal(req.Feedback)
	if err := h.engine.RecordFeedback(r.Context(), SessionIDFromContext(r.Context()), title, signal); err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, models.FeedbackAck{Title: title, Feedback: string(signal)}, start)
}
