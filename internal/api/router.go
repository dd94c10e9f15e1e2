// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/moodie/internal/models"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
}

// NewRouter creates a Router. A nil middleware uses defaults.
func NewRouter(handler *Handler, middleware *ChiMiddleware) *Router {
	if middleware == nil {
		middleware = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, middleware: middleware}
}

// Setup builds the routing tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.middleware.CORS())
	r.Use(rt.middleware.Session())
	r.Use(PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.middleware.RateLimit())

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", rt.handler.Live)
			r.Get("/ready", rt.handler.Ready)
		})

		r.Post("/recommend", rt.handler.Recommend)
		r.Post("/feedback", rt.handler.Feedback)
		r.Get("/history", rt.handler.History)
		r.Get("/moods", rt.handler.Moods)
		r.Get("/plex/status", rt.handler.PlexStatus)
	})

	return r
}
