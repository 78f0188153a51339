package library

import "github.com/osa030/hearo/internal/infra/kvstore"

// Library bundles the user collections. Build one per process and pass it to
// whatever needs it.
type Library struct {
	Likes     *LikedSongs
	Artists   *FollowedArtists
	Playlists *Playlists
}

// New creates all collections on top of one store.
func New(store kvstore.Store) *Library {
	return &Library{
		Likes:     NewLikedSongs(store),
		Artists:   NewFollowedArtists(store),
		Playlists: NewPlaylists(store),
	}
}

// Stats holds collection sizes for the profile view.
type Stats struct {
	LikedSongs      int
	Playlists       int
	FollowedArtists int
}

// Stats returns the current collection sizes.
func (l *Library) Stats() Stats {
	return Stats{
		LikedSongs:      l.Likes.Count(),
		Playlists:       l.Playlists.Count(),
		FollowedArtists: l.Artists.Count(),
	}
}
