// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package api exposes the recommendation engine over HTTP with a chi router.
//
// Every route runs behind request-ID, real-IP, panic recovery, CORS, session
// and Prometheus middleware. The /api/v1 group is also rate limited per IP.
// Responses use the models.APIResponse envelope, except the recommend,
// health and Plex status routes, which return bare JSON objects for the web
// client.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/moodie/internal/models"
	"github.com/tomtom215/moodie/internal/recommend"
)

// Recommender is the part of recommend.Engine the handlers use.
type Recommender interface {
	Recommend(ctx context.Context, sessionID string, in recommend.PreferenceInput, page, size int) (*recommend.Page, error)
	RecordFeedback(ctx context.Context, sessionID, title string, signal recommend.Signal) error
	RecentHistory(ctx context.Context, sessionID string, limit int) ([]recommend.HistoryEntry, error)
}

// StorePinger reports store health for the readiness probe.
type StorePinger interface {
	Ping(ctx context.Context) error
	Driver() string
}

// CachePinger is implemented by cache backends that have a remote
// dependency (Redis).
type CachePinger interface {
	Ping(ctx context.Context) error
}

// PlexIdentity resolves the Plex server name for the status route.
type PlexIdentity interface {
	ServerIdentity(ctx context.Context) (string, error)
}

// Handler holds the HTTP handler dependencies.
type Handler struct {
	engine Recommender
	store  StorePinger
	cache  CachePinger
	plex   PlexIdentity

	probeTimeout time.Duration
}

// HandlerDeps are the collaborators passed to NewHandler. Cache and Plex are
// optional.
type HandlerDeps struct {
	Engine Recommender
	Store  StorePinger
	Cache  CachePinger
	Plex   PlexIdentity
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		engine:       deps.Engine,
		store:        deps.Store,
		cache:        deps.Cache,
		plex:         deps.Plex,
		probeTimeout: 5 * time.Second,
	}
}

// respondEngineError maps engine errors onto HTTP status codes.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrUpstreamUnavailable):
		respondError(w, r, http.StatusBadGateway, models.ErrCodeUpstream, "Media server is unavailable", err)
	case errors.Is(err, recommend.ErrInvalidSignal),
		errors.Is(err, recommend.ErrEmptySession),
		errors.Is(err, recommend.ErrEmptyTitle):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Request cancelled", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load session data", err)
	}
}
