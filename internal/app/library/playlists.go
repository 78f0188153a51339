package library

import (
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/hearo/internal/domain/playlist"
	"github.com/osa030/hearo/internal/domain/track"
	"github.com/osa030/hearo/internal/infra/kvstore"
)

const playlistsKey = "playlists"

// Playlists is the collection of user playlists, newest first.
// Every mutation of a playlist goes through this store.
type Playlists struct {
	c   *Collection[playlist.Playlist]
	now func() time.Time
}

// NewPlaylists creates the playlists store.
func NewPlaylists(store kvstore.Store) *Playlists {
	c := NewCollection(store, playlistsKey, playlistKey)
	c.normalize = normalizePlaylist
	return &Playlists{
		c:   c,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// All returns all playlists.
func (p *Playlists) All() []playlist.Playlist {
	items := p.c.Items()
	for i := range items {
		items[i].Tracks = cloneTracks(items[i].Tracks)
	}
	return items
}

// Count returns the number of playlists.
func (p *Playlists) Count() int { return p.c.Len() }

// Create makes an empty playlist and inserts it at the front.
func (p *Playlists) Create(name string) playlist.Playlist {
	pl := playlist.New(name, p.now())
	p.c.Add(pl)
	zlog.Debug().Msgf("library: created playlist %s (%s)", pl.ID, pl.Name)
	return pl
}

// Find returns the playlist with the given id.
func (p *Playlists) Find(id string) (playlist.Playlist, bool) {
	pl, ok := p.c.find(func(pl playlist.Playlist) bool { return pl.ID == id })
	if ok {
		pl.Tracks = cloneTracks(pl.Tracks)
	}
	return pl, ok
}

// Rename changes the name of a playlist. Returns false for unknown ids.
func (p *Playlists) Rename(id, name string) bool {
	return p.modify(id, func(pl *playlist.Playlist) bool {
		if pl.Name == name {
			return false
		}
		pl.Name = name
		return true
	})
}

// Delete removes a playlist. Returns false for unknown ids.
func (p *Playlists) Delete(id string) bool {
	return p.c.Remove(playlist.Playlist{ID: id})
}

// AddTrack appends t to the playlist unless it is already there.
// Returns true if the track was added.
func (p *Playlists) AddTrack(t track.Track, id string) bool {
	if !t.HasID() {
		zlog.Debug().Msgf("library: not adding track without id to playlist %s", id)
		return false
	}
	return p.modify(id, func(pl *playlist.Playlist) bool {
		if pl.Contains(t) {
			return false
		}
		pl.Tracks = append(cloneTracks(pl.Tracks), t)
		return true
	})
}

// RemoveTrack removes t from the playlist.
// Returns true if the track was there.
func (p *Playlists) RemoveTrack(t track.Track, id string) bool {
	return p.modify(id, func(pl *playlist.Playlist) bool {
		kept := make([]track.Track, 0, len(pl.Tracks))
		for _, existing := range pl.Tracks {
			if existing.SameAs(t) {
				continue
			}
			kept = append(kept, existing)
		}
		if len(kept) == len(pl.Tracks) {
			return false
		}
		pl.Tracks = kept
		return true
	})
}

// modify applies fn to the playlist with the given id and persists the
// collection when fn reports a change.
func (p *Playlists) modify(id string, fn func(pl *playlist.Playlist) bool) bool {
	return p.c.update(func(items []playlist.Playlist) ([]playlist.Playlist, bool) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			pl := items[i]
			if !fn(&pl) {
				return items, false
			}
			next := make([]playlist.Playlist, len(items))
			copy(next, items)
			next[i] = pl
			return next, true
		}
		return items, false
	})
}

func playlistKey(pl playlist.Playlist) (string, bool) {
	if pl.ID == "" {
		return "", false
	}
	return pl.ID, true
}

// normalizePlaylist drops tracks without an id and repeated ids from a stored
// playlist, keeping the first occurrence.
func normalizePlaylist(pl playlist.Playlist) playlist.Playlist {
	seen := make(map[int64]struct{}, len(pl.Tracks))
	kept := make([]track.Track, 0, len(pl.Tracks))
	for _, t := range pl.Tracks {
		if !t.HasID() {
			continue
		}
		if _, dup := seen[*t.ID]; dup {
			continue
		}
		seen[*t.ID] = struct{}{}
		kept = append(kept, t)
	}
	if len(kept) != len(pl.Tracks) {
		zlog.Warn().Msgf("library: playlist %s: dropped %d invalid tracks", pl.ID, len(pl.Tracks)-len(kept))
	}
	pl.Tracks = kept
	return pl
}

func cloneTracks(tracks []track.Track) []track.Track {
	out := make([]track.Track, len(tracks))
	copy(out, tracks)
	return out
}
