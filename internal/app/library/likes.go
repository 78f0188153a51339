package library

import (
	"strconv"

	"github.com/osa030/hearo/internal/domain/track"
	"github.com/osa030/hearo/internal/infra/kvstore"
)

const likedSongsKey = "likedSongs"

// LikedSongs is the collection of liked tracks, most recent first.
type LikedSongs struct {
	c *Collection[track.Track]
}

// NewLikedSongs creates the liked songs store.
func NewLikedSongs(store kvstore.Store) *LikedSongs {
	return &LikedSongs{c: NewCollection(store, likedSongsKey, trackKey)}
}

// Liked returns all liked tracks.
func (l *LikedSongs) Liked() []track.Track { return l.c.Items() }

// Like adds t to the front. Already liked tracks are left in place.
func (l *LikedSongs) Like(t track.Track) bool { return l.c.Add(t) }

// Unlike removes t.
func (l *LikedSongs) Unlike(t track.Track) bool { return l.c.Remove(t) }

// IsLiked reports whether t is liked.
func (l *LikedSongs) IsLiked(t track.Track) bool { return l.c.Contains(t) }

// ToggleLike likes or unlikes t and returns whether it is now liked.
func (l *LikedSongs) ToggleLike(t track.Track) bool { return l.c.Toggle(t) }

// Count returns the number of liked tracks.
func (l *LikedSongs) Count() int { return l.c.Len() }

func trackKey(t track.Track) (string, bool) {
	if t.ID == nil {
		return "", false
	}
	return strconv.FormatInt(*t.ID, 10), true
}
