// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/moodie/internal/models"
	"github.com/tomtom215/moodie/internal/recommend"
)

// History handles GET /api/v1/history?limit=.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := HistoryRequest{Limit: getIntParam(r, "limit", defaultHistoryLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	sessionID := SessionIDFromContext(r.Context())
	entries, err := h.engine.RecentHistory(r.Context(), sessionID, req.Limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, models.HistoryResponse{
		SessionID: sessionID,
		Items:     historyItems(entries),
	}, start)
}

func historyItems(entries []recommend.HistoryEntry) []models.HistoryItem {
	items := make([]models.HistoryItem, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		moods := e.Moods
		if moods == nil {
			moods = []string{}
		}
		items = append(items, models.HistoryItem{
			Title:         e.Title,
			Moods:         moods,
			Time:          string(e.Time),
			Page:          e.Page,
			Rank:          e.Rank,
			RecommendedAt: e.RecommendedAt,
		})
	}
	return items
}
