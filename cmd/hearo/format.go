package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/osa030/hearo/internal/app/library"
	"github.com/osa030/hearo/internal/domain/playlist"
	"github.com/osa030/hearo/internal/domain/track"
)

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func printTracks(lib *library.Library, tracks []track.Track) {
	if len(tracks) == 0 {
		fmt.Println("   (no tracks)")
		return
	}
	for i, t := range tracks {
		fmt.Println(formatTrackLine(i+1, t, lib.Likes.IsLiked(t)))
	}
}

func formatTrackLine(n int, t track.Track, liked bool) string {
	heart := " "
	if liked {
		heart = "♥"
	}
	id := "-"
	if t.ID != nil {
		id = strconv.FormatInt(*t.ID, 10)
	}
	line := fmt.Sprintf("%3d. %s %s - %s", n, heart, t.Title(), t.Artist())
	if album := t.Album(); album != "" {
		line += " [" + album + "]"
	}
	if d := t.Duration(); d > 0 {
		line += " " + formatDuration(d)
	}
	return line + "  #" + id
}

func formatPlaylist(p playlist.Playlist) string {
	return fmt.Sprintf("%s  %s (%d tracks, %s) created %s",
		p.ID, p.Name, len(p.Tracks), formatDuration(p.TotalDuration()),
		p.CreatedAt.Local().Format(time.DateTime))
}

// formatTrackIDs lists the playlist's track ids one per line, in playlist
// order, so they can be fed back to "playlist add".
func formatTrackIDs(p playlist.Playlist) string {
	var b strings.Builder
	for _, id := range p.TrackIDs() {
		b.WriteString(strconv.FormatInt(id, 10))
		b.WriteByte('\n')
	}
	return b.String()
}

// formatDuration renders d as m:ss.
func formatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
