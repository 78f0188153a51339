// Package playlist provides the Playlist domain entity.
package playlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/osa030/hearo/internal/domain/track"
)

// Playlist represents a user-created playlist.
// ID and CreatedAt are fixed at creation; Name and Tracks change only through
// the playlist store.
type Playlist struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Tracks    []track.Track `json:"tracks"`
	CreatedAt time.Time     `json:"createdAt"`
}

// New creates an empty playlist with a fresh ID.
func New(name string, createdAt time.Time) Playlist {
	return Playlist{
		ID:        uuid.New().String(),
		Name:      name,
		Tracks:    make([]track.Track, 0),
		CreatedAt: createdAt,
	}
}

// Contains checks if the playlist already holds the same song.
func (p *Playlist) Contains(t track.Track) bool {
	for _, existing := range p.Tracks {
		if existing.SameAs(t) {
			return true
		}
	}
	return false
}

// TrackIDs returns the identifiers of all tracks that have one.
func (p *Playlist) TrackIDs() []int64 {
	ids := make([]int64, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		if t.ID != nil {
			ids = append(ids, *t.ID)
		}
	}
	return ids
}

// TotalDuration returns the total duration of all tracks.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration()
	}
	return total
}
