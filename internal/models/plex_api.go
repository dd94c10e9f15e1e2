// Moodie - Mood-Driven Plex Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodie

package models

// Plex REST API Models
// Responses from the Plex Media Server endpoints the catalog client calls.
// Documentation: https://plexapi.dev and https://www.plexopedia.com/plex-media-server/api/

// ============================================================================
// Server Identity - GET /
// ============================================================================

// PlexServerResponse represents the response from GET /
type PlexServerResponse struct {
	MediaContainer PlexServerContainer `json:"MediaContainer"`
}

// PlexServerContainer holds server identification fields
type PlexServerContainer struct {
	FriendlyName      string `json:"friendlyName"`
	MachineIdentifier string `json:"machineIdentifier,omitempty"`
	Version           string `json:"version,omitempty"`
	Platform          string `json:"platform,omitempty"`
}

// ============================================================================
// Library Sections Models - GET /library/sections
// ============================================================================

// PlexLibrarySectionsResponse represents the response from GET /library/sections
type PlexLibrarySectionsResponse struct {
	MediaContainer PlexLibrarySectionsContainer `json:"MediaContainer"`
}

// PlexLibrarySectionsContainer wraps the list of library sections
type PlexLibrarySectionsContainer struct {
	Size      int                  `json:"size"`
	Directory []PlexLibrarySection `json:"Directory,omitempty"`
}

// PlexLibrarySection represents a single library section (Movies, TV Shows, etc.)
type PlexLibrarySection struct {
	Key    string `json:"key"`              // Section key (used in /library/sections/{key}/all)
	UUID   string `json:"uuid,omitempty"`   // Unique section UUID
	Title  string `json:"title"`            // Section name (e.g., "Movies", "TV Shows")
	Type   string `json:"type"`             // "movie", "show", "artist", "photo"
	Hidden int    `json:"hidden,omitempty"` // Hidden from UI (0 or 1)
}

// ============================================================================
// Library Section Content Models - GET /library/sections/{id}/all
// ============================================================================

// PlexLibrarySectionContentResponse represents the response from GET /library/sections/{id}/all
type PlexLibrarySectionContentResponse struct {
	MediaContainer PlexLibrarySectionContentContainer `json:"MediaContainer"`
}

// PlexLibrarySectionContentContainer wraps library content items
type PlexLibrarySectionContentContainer struct {
	Size                int                   `json:"size"`
	TotalSize           int                   `json:"totalSize,omitempty"`
	LibrarySectionID    int                   `json:"librarySectionID,omitempty"`
	LibrarySectionTitle string                `json:"librarySectionTitle,omitempty"`
	Metadata            []PlexLibraryMetadata `json:"Metadata,omitempty"`
}

// PlexTag is one entry of the Genre, Director and Role arrays.
type PlexTag struct {
	Tag string `json:"tag"`
}

// PlexLibraryMetadata represents a movie or show in a library section
type PlexLibraryMetadata struct {
	RatingKey     string  `json:"ratingKey"`
	Type          string  `json:"type"`                    // movie, show
	Title         string  `json:"title"`                   // Item title
	Summary       string  `json:"summary,omitempty"`       // Item description
	ContentRating string  `json:"contentRating,omitempty"` // Age rating (PG-13, TV-MA)
	Rating        float64 `json:"rating,omitempty"`        // Critic rating
	Year          int     `json:"year,omitempty"`          // Release year
	Thumb         string  `json:"thumb,omitempty"`         // Poster path, relative to the server
	LastViewedAt  int64   `json:"lastViewedAt,omitempty"`  // Unix seconds
	Duration      int64   `json:"duration,omitempty"`      // Milliseconds; per-episode for shows
	ViewCount     int     `json:"viewCount,omitempty"`     // Plays

	Genre    []PlexTag `json:"Genre,omitempty"`
	Director []PlexTag `json:"Director,omitempty"`
	Role     []PlexTag `json:"Role,omitempty"`
}

// ============================================================================
// Helper Methods
// ============================================================================

// IsMovie returns true if this is a movie library section
func (s *PlexLibrarySection) IsMovie() bool {
	return s.Type == "movie"
}

// IsTV returns true if this is a TV show library section
func (s *PlexLibrarySection) IsTV() bool {
	return s.Type == "show"
}

// IsHidden returns true if the library section is hidden from UI
func (s *PlexLibrarySection) IsHidden() bool {
	return s.Hidden != 0
}

// Tags flattens a tag array into its values, skipping blanks.
func Tags(tags []PlexTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Tag != "" {
			out = append(out, t.Tag)
		}
	}
	return out
}
