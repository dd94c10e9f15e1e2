// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	// SessionCookie carries the anonymous session id for browser clients.
	SessionCookie = "moodie_session"

	// SessionHeader lets API clients pick their own session id.
	SessionHeader = "X-Session-ID"

	maxSessionIDLength = 128
	sessionCookieAge   = 365 * 24 * 60 * 60
)

type sessionKey struct{}

// SessionIDFromContext returns the session id stored by SessionMiddleware.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}

// ContextWithSessionID attaches a session id to ctx.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionMiddleware resolves the caller's session id from the X-Session-ID
// header or the session cookie, in that order. Requests with neither get a
// new UUID, returned as a cookie and echoed in the X-Session-ID header.
func SessionMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := validSessionID(r.Header.Get(SessionHeader))
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = validSessionID(c.Value)
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   sessionCookieAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, id)

			next.ServeHTTP(w, r.WithContext(ContextWithSessionID(r.Context(), id)))
		})
	}
}

// validSessionID trims s and rejects ids that are too long or contain
// anything outside [A-Za-z0-9-_].
func validSessionID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxSessionIDLength {
		return ""
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ""
		}
	}
	return s
}
