// Package main provides the hearo CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/hearo/internal/app/browse"
	"github.com/osa030/hearo/internal/app/library"
	"github.com/osa030/hearo/internal/infra/config"
	"github.com/osa030/hearo/internal/infra/itunes"
	"github.com/osa030/hearo/internal/infra/kvstore"
	"github.com/osa030/hearo/internal/infra/logger"
)

var (
	app        = kingpin.New("hearo", "hearo music preview client")
	configPath = app.Flag("config", "Path to config file").Default("config/hearo.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// catalog commands
	searchCmd   = app.Command("search", "Search tracks")
	searchQuery = searchCmd.Arg("query", "Search terms").Required().Strings()

	topCmd   = app.Command("top", "Show top songs for a genre")
	topGenre = topCmd.Arg("genre", "Genre (default from config)").String()

	homeCmd = app.Command("home", "Show the home feed")

	recentCmd = app.Command("recent", "Show recently played")

	artistCmd  = app.Command("artist", "Show an artist page")
	artistName = artistCmd.Arg("name", "Artist name").Required().Strings()

	// library commands
	likesCmd = app.Command("likes", "List liked songs")

	likeCmd     = app.Command("like", "Like or unlike a track")
	likeTrackID = likeCmd.Arg("track-id", "Catalog track ID").Required().Int64()

	artistsCmd = app.Command("artists", "List followed artists")

	followCmd   = app.Command("follow", "Follow or unfollow an artist")
	followName  = followCmd.Arg("name", "Artist name").Required().Strings()
	followImage = followCmd.Flag("image", "Artist image URL").String()

	playlistsCmd = app.Command("playlists", "List playlists")

	playlistCmd = app.Command("playlist", "Manage a playlist")

	plCreateCmd  = playlistCmd.Command("create", "Create a playlist")
	plCreateName = plCreateCmd.Arg("name", "Playlist name").Required().Strings()

	plRenameCmd  = playlistCmd.Command("rename", "Rename a playlist")
	plRenameID   = plRenameCmd.Arg("id", "Playlist ID or unique prefix").Required().String()
	plRenameName = plRenameCmd.Arg("name", "New name").Required().Strings()

	plDeleteCmd = playlistCmd.Command("delete", "Delete a playlist")
	plDeleteID  = plDeleteCmd.Arg("id", "Playlist ID or unique prefix").Required().String()

	plShowCmd = playlistCmd.Command("show", "Show playlist tracks")
	plShowID  = plShowCmd.Arg("id", "Playlist ID or unique prefix").Required().String()
	plShowIDs = plShowCmd.Flag("ids", "Print only track IDs, one per line").Bool()

	plAddCmd     = playlistCmd.Command("add", "Add a track to a playlist")
	plAddID      = plAddCmd.Arg("id", "Playlist ID or unique prefix").Required().String()
	plAddTrackID = plAddCmd.Arg("track-id", "Catalog track ID").Required().Int64()

	plRemoveCmd     = playlistCmd.Command("remove", "Remove a track from a playlist")
	plRemoveID      = plRemoveCmd.Arg("id", "Playlist ID or unique prefix").Required().String()
	plRemoveTrackID = plRemoveCmd.Arg("track-id", "Catalog track ID").Required().Int64()

	profileCmd = app.Command("profile", "Show library stats")

	// playback commands
	playCmd      = app.Command("play", "Search and play previews interactively")
	playQuery    = playCmd.Arg("query", "Search terms").Strings()
	playIndex    = playCmd.Flag("index", "Start at result number").Default("1").Int()
	playLikes    = playCmd.Flag("likes", "Play liked songs").Bool()
	playPlaylist = playCmd.Flag("playlist", "Play a playlist (ID or unique prefix)").String()

	watchCmd = app.Command("watch", "Type-ahead search reading input lines from stdin")
)

// deps holds the objects shared by commands.
type deps struct {
	cfg     *config.Config
	lib     *library.Library
	catalog *itunes.Client
	browse  *browse.Service
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger from flags until config is loaded
	if err := initLogger(config.LogConfig{Level: "info", Output: "stderr"}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Error().Err(err).Msg("Failed to load config")
		os.Exit(1)
	}
	if err := initLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	d, err := newDeps(cfg)
	if err != nil {
		zlog.Error().Err(err).Msg("Failed to initialize")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, d, command); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func initLogger(lc config.LogConfig) error {
	loggerConfig := logger.Config{
		Output: lc.Output,
		Level:  lc.Level,
		File:   lc.File,
	}
	if lc.File != "" {
		loggerConfig.Output = "file"
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	return logger.Init(loggerConfig)
}

func newDeps(cfg *config.Config) (*deps, error) {
	store, err := kvstore.New(cfg.Storage.Type, cfg.Storage.Settings)
	if err != nil {
		return nil, err
	}
	lib := library.New(store)

	catalog := itunes.New(itunes.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Limit:   cfg.Catalog.Limit,
		Timeout: cfg.CatalogTimeout(),
	})

	sections := make([]browse.Section, 0, len(cfg.Home.Sections))
	for _, s := range cfg.Home.Sections {
		sections = append(sections, browse.Section{Title: s.Title, Query: s.Query})
	}
	svc := browse.New(catalog, lib, browse.Config{
		Sections:            sections,
		RecentlyPlayedQuery: cfg.Home.RecentlyPlayedQuery,
		RecentlyPlayedLimit: cfg.Home.RecentlyPlayedLimit,
		DefaultGenre:        cfg.Home.DefaultGenre,
	})

	return &deps{cfg: cfg, lib: lib, catalog: catalog, browse: svc}, nil
}

func run(ctx context.Context, d *deps, command string) error {
	switch command {
	case searchCmd.FullCommand():
		return d.search(ctx, joinArgs(*searchQuery))
	case topCmd.FullCommand():
		return d.top(ctx, *topGenre)
	case homeCmd.FullCommand():
		return d.home(ctx)
	case recentCmd.FullCommand():
		return d.recent(ctx)
	case artistCmd.FullCommand():
		return d.artist(ctx, joinArgs(*artistName))
	case likesCmd.FullCommand():
		d.likes()
		return nil
	case likeCmd.FullCommand():
		return d.like(ctx, *likeTrackID)
	case artistsCmd.FullCommand():
		d.artists()
		return nil
	case followCmd.FullCommand():
		d.follow(joinArgs(*followName), *followImage)
		return nil
	case playlistsCmd.FullCommand():
		d.playlists()
		return nil
	case plCreateCmd.FullCommand():
		d.playlistCreate(joinArgs(*plCreateName))
		return nil
	case plRenameCmd.FullCommand():
		return d.playlistRename(*plRenameID, joinArgs(*plRenameName))
	case plDeleteCmd.FullCommand():
		return d.playlistDelete(*plDeleteID)
	case plShowCmd.FullCommand():
		return d.playlistShow(*plShowID, *plShowIDs)
	case plAddCmd.FullCommand():
		return d.playlistAdd(ctx, *plAddID, *plAddTrackID)
	case plRemoveCmd.FullCommand():
		return d.playlistRemove(*plRemoveID, *plRemoveTrackID)
	case profileCmd.FullCommand():
		d.profile()
		return nil
	case playCmd.FullCommand():
		return d.play(ctx, playSource{
			query:    joinArgs(*playQuery),
			likes:    *playLikes,
			playlist: *playPlaylist,
			index:    *playIndex,
		})
	case watchCmd.FullCommand():
		return d.watch(ctx, os.Stdin)
	default:
		return errors.Newf("unknown command: %s", command)
	}
}
