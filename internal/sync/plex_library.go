// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tomtom215/moodie/internal/logging"
	"github.com/tomtom215/moodie/internal/metrics"
	"github.com/tomtom215/moodie/internal/models"
	"github.com/tomtom215/moodie/internal/recommend"
)

// FetchCatalog returns every movie and show in the kept library sections.
// format narrows the section types; the optional section allow-list narrows
// them further.
func (c *PlexClient) FetchCatalog(ctx context.Context, format recommend.Format) (items []recommend.MediaItem, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordCatalogFetch(time.Since(start), len(items), fetchErrorType(err))
	}()

	sections, err := c.librarySections(ctx)
	if err != nil {
		return nil, err
	}

	for i := range sections {
		section := &sections[i]
		if !c.keepSection(section, format) {
			continue
		}

		content, err := c.sectionContent(ctx, section.Key)
		if err != nil {
			return nil, err
		}
		for j := range content {
			items = append(items, c.toMediaItem(&content[j]))
		}

		logging.Debug().
			Str("section", section.Title).
			Str("type", section.Type).
			Int("items", len(content)).
			Msg("Fetched Plex library section")
	}

	if items == nil {
		items = []recommend.MediaItem{}
	}
	return items, nil
}

func (c *PlexClient) librarySections(ctx context.Context) ([]models.PlexLibrarySection, error) {
	var resp models.PlexLibrarySectionsResponse
	if err := c.doJSONRequest(ctx, "/library/sections", &resp); err != nil {
		return nil, err
	}
	return resp.MediaContainer.Directory, nil
}

func (c *PlexClient) sectionContent(ctx context.Context, key string) ([]models.PlexLibraryMetadata, error) {
	var resp models.PlexLibrarySectionContentResponse
	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(key))
	if err := c.doJSONRequest(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.MediaContainer.Metadata, nil
}

func (c *PlexClient) keepSection(s *models.PlexLibrarySection, format recommend.Format) bool {
	if s.IsHidden() {
		return false
	}
	switch format {
	case recommend.FormatMovie:
		if !s.IsMovie() {
			return false
		}
	case recommend.FormatShow:
		if !s.IsTV() {
			return false
		}
	default:
		if !s.IsMovie() && !s.IsTV() {
			return false
		}
	}
	if c.sections != nil {
		if _, ok := c.sections[s.Key]; !ok {
			return false
		}
	}
	return true
}

func (c *PlexClient) toMediaItem(m *models.PlexLibraryMetadata) recommend.MediaItem {
	item := recommend.MediaItem{
		Title:         m.Title,
		Type:          m.Type,
		Genres:        models.Tags(m.Genre),
		Duration:      float64(m.Duration) / 60000,
		ViewCount:     m.ViewCount,
		Rating:        m.Rating,
		Summary:       m.Summary,
		Year:          m.Year,
		ContentRating: m.ContentRating,
		Directors:     models.Tags(m.Director),
		Cast:          models.Tags(m.Role),
		Unwatched:     m.ViewCount == 0,
	}
	if m.LastViewedAt > 0 {
		t := time.Unix(m.LastViewedAt, 0).UTC()
		item.LastViewedAt = &t
	}
	if m.Thumb != "" {
		item.PosterURL = c.baseURL + m.Thumb + "?X-Plex-Token=" + url.QueryEscape(c.token)
	}
	return item
}

func fetchErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPlexUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrPlexStatus):
		return "status"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "transport"
	}
}
