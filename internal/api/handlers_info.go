// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/models"
	"github.com/tomtom215/moodie/internal/recommend"
)

// Moods handles GET /api/v1/moods.
func (h *Handler) Moods(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	defs := recommend.Moods()
	out := make([]models.MoodInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, models.MoodInfo{
			Name:              d.Name,
			Genres:            d.Genres,
			Keywords:          d.Keywords,
			ConflictingGenres: d.ConflictingGenres,
		})
	}
	respondSuccess(w, out, start)
}

// PlexStatus handles GET /api/v1/plex/status. Lookup failures are reported
// as disconnected rather than as errors.
func (h *Handler) PlexStatus(w http.ResponseWriter, r *http.Request) {
	status := models.PlexStatus{}
	if h.plex != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.probeTimeout)
		defer cancel()

		name, err := h.plex.ServerIdentity(ctx)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Plex status check failed")
		} else {
			status = models.PlexStatus{Connected: true, Server: name}
		}
	}
	writeJSON(w, http.StatusOK, "no-cache", status)
}

// Live handles GET /api/v1/health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, "no-cache", models.HealthStatus{Status: "ok"})
}

// Ready handles GET /api/v1/health/ready. It returns 503 when the store (or
// a remote cache) does not answer a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.probeTimeout)
	defer cancel()

	status := models.HealthStatus{Status: "ok", Database: "ok"}
	code := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("driver", h.store.Driver()).Msg("Store ping failed")
		status.Status, status.Database = "unavailable", "unavailable"
		code = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		status.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Cache ping failed")
			status.Status, status.Cache = "unavailable", "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, "no-cache", status)
}
