// Package browse assembles the catalog views: home feed, top songs, recently
// played, artist pages and profile stats.
package browse

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/hearo/internal/app/library"
	"github.com/osa030/hearo/internal/domain/track"
)

// Catalog is the search backend.
type Catalog interface {
	Search(ctx context.Context, query string) ([]track.Track, error)
}

// Section is a titled row on the home feed backed by one search query.
type Section struct {
	Title string
	Query string
}

// DefaultSections are the home feed rows used when none are configured.
var DefaultSections = []Section{
	{Title: "Featuring", Query: "top hits 2024"},
	{Title: "Recently Played", Query: "chainsmokers"},
	{Title: "Mixes", Query: "martin garrix"},
}

// Config holds browse configuration.
type Config struct {
	Sections            []Section
	RecentlyPlayedQuery string
	RecentlyPlayedLimit int
	DefaultGenre        string
}

// Feed is a loaded home feed row. Err is set when the row failed to load, in
// which case Tracks is empty.
type Feed struct {
	Title  string
	Tracks []track.Track
	Err    error
}

// ArtistPage is the view of a single artist.
type ArtistPage struct {
	Name      string
	ImageURL  string
	Tracks    []track.Track
	Following bool
}

// Service builds browse views from the catalog and the user's library.
type Service struct {
	catalog Catalog
	lib     *library.Library
	cfg     Config
}

// New creates a browse service. Zero config fields take defaults.
func New(catalog Catalog, lib *library.Library, cfg Config) *Service {
	if len(cfg.Sections) == 0 {
		cfg.Sections = DefaultSections
	}
	if cfg.RecentlyPlayedQuery == "" {
		cfg.RecentlyPlayedQuery = "imagine dragons"
	}
	if cfg.RecentlyPlayedLimit <= 0 {
		cfg.RecentlyPlayedLimit = 10
	}
	if cfg.DefaultGenre == "" {
		cfg.DefaultGenre = "pop"
	}
	return &Service{catalog: catalog, lib: lib, cfg: cfg}
}

// HomeFeed loads every section concurrently. A failed section is logged and
// returned empty with its error; the feed as a whole only fails when ctx is
// done.
func (s *Service) HomeFeed(ctx context.Context) ([]Feed, error) {
	feeds := make([]Feed, len(s.cfg.Sections))

	g, gctx := errgroup.WithContext(ctx)
	for i, sec := range s.cfg.Sections {
		feeds[i].Title = sec.Title
		g.Go(func() error {
			tracks, err := s.catalog.Search(gctx, sec.Query)
			if err != nil {
				zlog.Warn().Err(err).Msgf("browse: section %q failed", sec.Title)
				feeds[i].Tracks = make([]track.Track, 0)
				feeds[i].Err = err
				return nil
			}
			feeds[i].Tracks = tracks
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "home feed canceled")
	}
	return feeds, nil
}

// TopSongs returns the top tracks for genre, or the default genre when empty.
func (s *Service) TopSongs(ctx context.Context, genre string) ([]track.Track, error) {
	if strings.TrimSpace(genre) == "" {
		genre = s.cfg.DefaultGenre
	}
	return s.catalog.Search(ctx, genre)
}

// RecentlyPlayed returns the library's recently played row.
func (s *Service) RecentlyPlayed(ctx context.Context) ([]track.Track, error) {
	tracks, err := s.catalog.Search(ctx, s.cfg.RecentlyPlayedQuery)
	if err != nil {
		return nil, err
	}
	if len(tracks) > s.cfg.RecentlyPlayedLimit {
		tracks = tracks[:s.cfg.RecentlyPlayedLimit]
	}
	return tracks, nil
}

// ArtistTracks searches for name and keeps tracks whose artist name contains
// it, ignoring case.
func (s *Service) ArtistTracks(ctx context.Context, name string) ([]track.Track, error) {
	tracks, err := s.catalog.Search(ctx, name)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	out := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ArtistName == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*t.ArtistName), needle) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Artist builds the artist page. The image is the high-res artwork of the
// first matching track.
func (s *Service) Artist(ctx context.Context, name string) (*ArtistPage, error) {
	tracks, err := s.ArtistTracks(ctx, name)
	if err != nil {
		return nil, err
	}

	page := &ArtistPage{
		Name:      name,
		Tracks:    tracks,
		Following: s.lib.Artists.IsFollowing(name),
	}
	for _, t := range tracks {
		if u := t.ArtworkURL600(); u != nil {
			page.ImageURL = *u
			break
		}
	}
	return page, nil
}

// Profile returns the library sizes.
func (s *Service) Profile() library.Stats {
	return s.lib.Stats()
}
