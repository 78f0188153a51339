// Package track provides the Track domain entity.
package track

import (
	"strings"
	"time"
)

const (
	artworkSmallToken = "100x100"
	artworkLargeToken = "600x600"
)

// Track represents a catalog track.
// Field names and JSON tags follow the catalog wire format, so the same value
// is used for API responses and for the persisted likes/playlists blobs.
// Every field is optional because the catalog may omit any of them.
type Track struct {
	ID              *int64  `json:"trackId"`         // Catalog track ID
	Name            *string `json:"trackName"`       // Track name
	ArtistName      *string `json:"artistName"`      // Artist name
	CollectionName  *string `json:"collectionName"`  // Album name
	ArtworkURL100   *string `json:"artworkUrl100"`   // Low-res artwork URL
	PreviewURL      *string `json:"previewUrl"`      // 30s preview media URL
	TrackTimeMillis *int64  `json:"trackTimeMillis"` // Full track length
}

// HasID reports whether the track carries a catalog identifier.
func (t Track) HasID() bool {
	return t.ID != nil
}

// SameAs reports whether both tracks refer to the same song.
// Identity is by identifier only; tracks without one never match.
func (t Track) SameAs(other Track) bool {
	if t.ID == nil || other.ID == nil {
		return false
	}
	return *t.ID == *other.ID
}

// ArtworkURL600 returns the high-res artwork URL derived from ArtworkURL100.
func (t Track) ArtworkURL600() *string {
	if t.ArtworkURL100 == nil {
		return nil
	}
	u := strings.ReplaceAll(*t.ArtworkURL100, artworkSmallToken, artworkLargeToken)
	return &u
}

// Duration returns the full track length, or 0 when unknown.
func (t Track) Duration() time.Duration {
	if t.TrackTimeMillis == nil || *t.TrackTimeMillis < 0 {
		return 0
	}
	return time.Duration(*t.TrackTimeMillis) * time.Millisecond
}

// Preview returns the preview URL, or "" when the track has none.
func (t Track) Preview() string {
	if t.PreviewURL == nil {
		return ""
	}
	return *t.PreviewURL
}

// Title returns the track name for display.
func (t Track) Title() string {
	return valueOr(t.Name, "Unknown")
}

// Artist returns the artist name for display.
func (t Track) Artist() string {
	return valueOr(t.ArtistName, "Unknown Artist")
}

// Album returns the album name for display.
func (t Track) Album() string {
	return valueOr(t.CollectionName, "")
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
