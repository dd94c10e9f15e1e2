// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

// Package models holds wire types shared across packages: the Plex REST API
// responses consumed by internal/sync and the JSON envelope returned by
// internal/api.
package models

import (
	"time"
)

// APIResponse is the envelope used by every JSON endpoint except
// POST /api/v1/recommend, which returns the bare page the web client expects.
//
// Status is "success" or "error". On error, Error is set and Data is null.
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z"},
//	  "error": {"code": "VALIDATION_ERROR", "message": "feedback must be one of [up down]"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error code plus a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUpstream     = "UPSTREAM_UNAVAILABLE"
	ErrCodeDatabase     = "DATABASE_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// FeedbackAck is the data payload of a successful POST /api/v1/feedback.
type FeedbackAck struct {
	Title    string `json:"title"`
	Feedback string `json:"feedback"`
}

// HistoryItem is one row of GET /api/v1/history.
type HistoryItem struct {
	Title         string    `json:"title"`
	Moods         []string  `json:"moods"`
	Time          string    `json:"time"`
	Page          int       `json:"page"`
	Rank          int       `json:"rank"`
	RecommendedAt time.Time `json:"recommended_at"`
}

// HistoryResponse is the data payload of GET /api/v1/history.
type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Items     []HistoryItem `json:"items"`
}

// MoodInfo describes one selectable mood for GET /api/v1/moods.
type MoodInfo struct {
	Name              string   `json:"name"`
	Genres            []string `json:"genres"`
	Keywords          []string `json:"keywords"`
	ConflictingGenres []string `json:"conflicting_genres"`
}

// PlexStatus is the response of GET /api/v1/plex/status.
// Server is empty when Connected is false.
type PlexStatus struct {
	Connected bool   `json:"connected"`
	Server    string `json:"server,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}
