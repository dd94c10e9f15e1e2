// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package sync

import (
	"context"

	"github.com/tomtom215/moodie/internal/models"
)

// ServerIdentity returns the server's friendly name.
//
// Endpoint: GET /
func (c *PlexClient) ServerIdentity(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var resp models.PlexServerResponse
	if err := c.doJSONRequest(ctx, "/", &resp); err != nil {
		return "", err
	}
	return resp.MediaContainer.FriendlyName, nil
}
