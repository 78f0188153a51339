package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/hearo/internal/app/library"
	"github.com/osa030/hearo/internal/domain/playlist"
	"github.com/osa030/hearo/internal/domain/track"
	"github.com/osa030/hearo/internal/infra/itunes"
)

func (d *deps) search(ctx context.Context, query string) error {
	tracks, err := d.catalog.Search(ctx, query)
	if err != nil {
		return describeCatalogError(err)
	}
	printTracks(d.lib, tracks)
	return nil
}

func (d *deps) top(ctx context.Context, genre string) error {
	tracks, err := d.browse.TopSongs(ctx, genre)
	if err != nil {
		return describeCatalogError(err)
	}
	printTracks(d.lib, tracks)
	return nil
}

func (d *deps) home(ctx context.Context) error {
	feeds, err := d.browse.HomeFeed(ctx)
	if err != nil {
		return err
	}
	for _, f := range feeds {
		fmt.Printf("== %s ==\n", f.Title)
		if f.Err != nil {
			fmt.Printf("   (unavailable: %v)\n", describeCatalogError(f.Err))
			continue
		}
		printTracks(d.lib, f.Tracks)
		fmt.Println()
	}
	return nil
}

func (d *deps) recent(ctx context.Context) error {
	tracks, err := d.browse.RecentlyPlayed(ctx)
	if err != nil {
		return describeCatalogError(err)
	}
	printTracks(d.lib, tracks)
	return nil
}

func (d *deps) artist(ctx context.Context, name string) error {
	page, err := d.browse.Artist(ctx, name)
	if err != nil {
		return describeCatalogError(err)
	}
	status := "not following"
	if page.Following {
		status = "following"
	}
	fmt.Printf("%s (%s)\n", page.Name, status)
	if page.ImageURL != "" {
		fmt.Printf("Image: %s\n", page.ImageURL)
	}
	printTracks(d.lib, page.Tracks)
	return nil
}

func (d *deps) likes() {
	liked := d.lib.Likes.Liked()
	if len(liked) == 0 {
		fmt.Println("No liked songs yet")
		return
	}
	printTracks(d.lib, liked)
}

func (d *deps) like(ctx context.Context, id int64) error {
	t, err := d.findTrack(ctx, id)
	if err != nil {
		return err
	}
	if d.lib.Likes.ToggleLike(t) {
		fmt.Printf("♥ Liked %s - %s\n", t.Title(), t.Artist())
	} else {
		fmt.Printf("Removed %s - %s from liked songs\n", t.Title(), t.Artist())
	}
	return nil
}

func (d *deps) artists() {
	followed := d.lib.Artists.Followed()
	if len(followed) == 0 {
		fmt.Println("Not following any artists yet")
		return
	}
	for i, a := range followed {
		fmt.Printf("%3d. %s\n", i+1, a.Name)
	}
}

func (d *deps) follow(name, imageURL string) {
	if d.lib.Artists.ToggleFollow(name, imageURL) {
		fmt.Printf("Following %s\n", name)
	} else {
		fmt.Printf("Unfollowed %s\n", name)
	}
}

func (d *deps) playlists() {
	all := d.lib.Playlists.All()
	if len(all) == 0 {
		fmt.Println("No playlists yet")
		return
	}
	for _, p := range all {
		fmt.Println(formatPlaylist(p))
	}
}

func (d *deps) playlistCreate(name string) {
	p := d.lib.Playlists.Create(name)
	fmt.Printf("Created %s\n", formatPlaylist(p))
}

func (d *deps) playlistRename(ref, name string) error {
	p, err := resolvePlaylist(d.lib.Playlists, ref)
	if err != nil {
		return err
	}
	if d.lib.Playlists.Rename(p.ID, name) {
		fmt.Printf("Renamed %q to %q\n", p.Name, name)
	}
	return nil
}

func (d *deps) playlistDelete(ref string) error {
	p, err := resolvePlaylist(d.lib.Playlists, ref)
	if err != nil {
		return err
	}
	d.lib.Playlists.Delete(p.ID)
	fmt.Printf("Deleted %q\n", p.Name)
	return nil
}

func (d *deps) playlistShow(ref string, idsOnly bool) error {
	p, err := resolvePlaylist(d.lib.Playlists, ref)
	if err != nil {
		return err
	}
	if idsOnly {
		fmt.Print(formatTrackIDs(p))
		return nil
	}
	fmt.Println(formatPlaylist(p))
	printTracks(d.lib, p.Tracks)
	return nil
}

func (d *deps) playlistAdd(ctx context.Context, ref string, trackID int64) error {
	p, err := resolvePlaylist(d.lib.Playlists, ref)
	if err != nil {
		return err
	}
	t, err := d.findTrack(ctx, trackID)
	if err != nil {
		return err
	}
	if d.lib.Playlists.AddTrack(t, p.ID) {
		fmt.Printf("Added %s to %q\n", t.Title(), p.Name)
	} else {
		fmt.Printf("%s is already in %q\n", t.Title(), p.Name)
	}
	return nil
}

func (d *deps) playlistRemove(ref string, trackID int64) error {
	p, err := resolvePlaylist(d.lib.Playlists, ref)
	if err != nil {
		return err
	}
	if !d.lib.Playlists.RemoveTrack(track.Track{ID: &trackID}, p.ID) {
		return errors.Newf("track %d is not in %q", trackID, p.Name)
	}
	fmt.Printf("Removed track %d from %q\n", trackID, p.Name)
	return nil
}

func (d *deps) profile() {
	s := d.browse.Profile()
	fmt.Printf("Liked songs:      %d\n", s.LikedSongs)
	fmt.Printf("Playlists:        %d\n", s.Playlists)
	fmt.Printf("Followed artists: %d\n", s.FollowedArtists)
}

// findTrack looks for id in the library before asking the catalog.
func (d *deps) findTrack(ctx context.Context, id int64) (track.Track, error) {
	probe := track.Track{ID: &id}
	for _, t := range d.lib.Likes.Liked() {
		if t.SameAs(probe) {
			return t, nil
		}
	}
	for _, p := range d.lib.Playlists.All() {
		for _, t := range p.Tracks {
			if t.SameAs(probe) {
				return t, nil
			}
		}
	}
	t, err := d.catalog.Lookup(ctx, id)
	if err != nil {
		return track.Track{}, describeCatalogError(err)
	}
	return t, nil
}

// resolvePlaylist finds a playlist by exact ID, then by unique ID prefix,
// then by case-insensitive name.
func resolvePlaylist(store *library.Playlists, ref string) (playlist.Playlist, error) {
	if p, ok := store.Find(ref); ok {
		return p, nil
	}

	all := store.All()
	var matches []playlist.Playlist
	for _, p := range all {
		if strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		for _, p := range all {
			if strings.EqualFold(p.Name, ref) {
				matches = append(matches, p)
			}
		}
	}

	switch len(matches) {
	case 0:
		return playlist.Playlist{}, errors.Newf("no playlist matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return playlist.Playlist{}, errors.Newf("%q matches %d playlists", ref, len(matches))
	}
}

// describeCatalogError turns catalog failures into a user-facing message.
func describeCatalogError(err error) error {
	switch {
	case errors.Is(err, itunes.ErrEmptyQuery):
		return errors.New("enter something to search for")
	case errors.Is(err, itunes.ErrNotFound):
		return errors.Wrap(err, "not in the catalog")
	case errors.Is(err, itunes.ErrNetwork):
		return errors.Wrap(err, "could not reach the catalog")
	case errors.Is(err, itunes.ErrStatus):
		return errors.Wrap(err, "the catalog is unavailable")
	case errors.Is(err, itunes.ErrDecode):
		return errors.Wrap(err, "unexpected catalog response")
	default:
		return err
	}
}
