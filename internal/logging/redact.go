// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package logging

import "strings"

// SanitizeToken masks a secret, keeping the first and last 4 characters.
// Values of 12 characters or fewer are fully masked.
//
//	SanitizeToken("abcd1234efgh5678") // "abcd...5678"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeSessionID masks a session identifier the same way as a token.
func SanitizeSessionID(sessionID string) string {
	return SanitizeToken(sessionID)
}

// SanitizeLogValue strips CR/LF so user-supplied strings cannot forge log lines,
// and truncates to 200 bytes.
func SanitizeLogValue(s string) string {
	s = strings.NewReplacer("\n", "\\n", "\r", "\\r").Replace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// RedactPlexToken removes the X-Plex-Token query value from a URL string.
func RedactPlexToken(raw string) string {
	const param = "X-Plex-Token="
	i := strings.Index(raw, param)
	if i < 0 {
		return raw
	}
	start := i + len(param)
	end := strings.IndexByte(raw[start:], '&')
	if end < 0 {
		return raw[:start] + "REDACTED"
	}
	return raw[:start] + "REDACTED" + raw[start+end:]
}
