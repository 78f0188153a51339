package library

import (
	"github.com/osa030/hearo/internal/domain/artist"
	"github.com/osa030/hearo/internal/infra/kvstore"
)

const followedArtistsKey = "followedArtists"

// FollowedArtists is the collection of followed artists, most recent first.
// Artists are matched by name, ignoring case.
type FollowedArtists struct {
	c *Collection[artist.Artist]
}

// NewFollowedArtists creates the followed artists store.
func NewFollowedArtists(store kvstore.Store) *FollowedArtists {
	return &FollowedArtists{c: NewCollection(store, followedArtistsKey, artistKey)}
}

// Followed returns all followed artists.
func (f *FollowedArtists) Followed() []artist.Artist { return f.c.Items() }

// Follow adds a to the front.
func (f *FollowedArtists) Follow(a artist.Artist) bool { return f.c.Add(a) }

// Unfollow removes a.
func (f *FollowedArtists) Unfollow(a artist.Artist) bool { return f.c.Remove(a) }

// IsFollowing reports whether an artist with this name is followed.
func (f *FollowedArtists) IsFollowing(name string) bool {
	return f.c.Contains(artist.New(name, ""))
}

// ToggleFollow follows or unfollows the named artist and returns whether it
// is now followed. imageURL is only kept when following.
func (f *FollowedArtists) ToggleFollow(name, imageURL string) bool {
	return f.c.Toggle(artist.New(name, imageURL))
}

// Count returns the number of followed artists.
func (f *FollowedArtists) Count() int { return f.c.Len() }

func artistKey(a artist.Artist) (string, bool) {
	if a.Name == "" {
		return "", false
	}
	return a.Key(), true
}
