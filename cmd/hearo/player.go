package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/hearo/internal/app/playback"
	"github.com/osa030/hearo/internal/app/search"
	"github.com/osa030/hearo/internal/domain/track"
	"github.com/osa030/hearo/internal/infra/mpv"
)

// playSource selects what the play command queues.
type playSource struct {
	query    string
	likes    bool
	playlist string
	index    int // 1-based
}

const playHelp = `keys: <enter>/pause toggle, n next, p previous, s shuffle, r repeat,
      seek <0..1>, like, add <playlist>, i info, q quit`

func (d *deps) queueFor(ctx context.Context, src playSource) ([]track.Track, string, error) {
	switch {
	case src.likes:
		return d.lib.Likes.Liked(), "Liked Songs", nil
	case src.playlist != "":
		p, err := resolvePlaylist(d.lib.Playlists, src.playlist)
		if err != nil {
			return nil, "", err
		}
		return p.Tracks, p.Name, nil
	case src.query != "":
		tracks, err := d.catalog.Search(ctx, src.query)
		if err != nil {
			return nil, "", describeCatalogError(err)
		}
		return tracks, src.query, nil
	default:
		return nil, "", errors.New("give a search query, --likes or --playlist")
	}
}

func (d *deps) play(ctx context.Context, src playSource) error {
	tracks, label, err := d.queueFor(ctx, src)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errors.Newf("nothing to play in %s", label)
	}

	engine, err := mpv.New()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctrl := playback.NewController(engine, playback.Config{})
	defer ctrl.Close()

	start := min(max(src.index-1, 0), len(tracks)-1)
	if err := ctrl.SetQueue(tracks, start); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ctrl.Watch(ctx, engine.Finished())
	go printEvents(ctrl.Events())

	fmt.Printf("Queue: %s (%d tracks)\n%s\n", label, len(tracks), playHelp)
	if err := ctrl.Play(ctx, start); err != nil {
		fmt.Printf("Cannot play: %v\n", err)
	}

	lines := readLines(ctx, os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if d.handleKey(ctx, ctrl, parseKey(line)) {
				return nil
			}
		}
	}
}

type keyKind int

const (
	keyUnknown keyKind = iota
	keyToggle
	keyNext
	keyPrevious
	keyShuffle
	keyRepeat
	keySeek
	keyLike
	keyAdd
	keyInfo
	keyQuit
)

type key struct {
	kind     keyKind
	fraction float64
	arg      string
}

// parseKey maps an input line to a player action.
func parseKey(line string) key {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return key{kind: keyToggle}
	}
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch strings.ToLower(fields[0]) {
	case "pause", "play":
		return key{kind: keyToggle}
	case "n", "next":
		return key{kind: keyNext}
	case "p", "prev", "previous":
		return key{kind: keyPrevious}
	case "s", "shuffle":
		return key{kind: keyShuffle}
	case "r", "repeat":
		return key{kind: keyRepeat}
	case "seek":
		if len(fields) != 2 {
			return key{kind: keyUnknown}
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return key{kind: keyUnknown}
		}
		return key{kind: keySeek, fraction: f}
	case "like":
		return key{kind: keyLike}
	case "add":
		if rest == "" {
			return key{kind: keyUnknown}
		}
		return key{kind: keyAdd, arg: rest}
	case "i", "info":
		return key{kind: keyInfo}
	case "q", "quit", "exit":
		return key{kind: keyQuit}
	default:
		return key{kind: keyUnknown}
	}
}

// handleKey runs one player action and reports whether to quit.
func (d *deps) handleKey(ctx context.Context, ctrl *playback.Controller, k key) bool {
	var err error
	switch k.kind {
	case keyToggle:
		err = ctrl.TogglePlayPause(ctx)
	case keyNext:
		err = ctrl.Next(ctx)
	case keyPrevious:
		err = ctrl.Previous(ctx)
	case keyShuffle:
		fmt.Printf("Shuffle %s\n", onOff(ctrl.ToggleShuffle()))
	case keyRepeat:
		fmt.Printf("Repeat %s\n", ctrl.CycleRepeatMode())
	case keySeek:
		err = ctrl.Seek(k.fraction)
	case keyLike:
		if t := ctrl.Snapshot().Track; t != nil {
			if d.lib.Likes.ToggleLike(*t) {
				fmt.Printf("♥ Liked %s\n", t.Title())
			} else {
				fmt.Printf("Unliked %s\n", t.Title())
			}
		}
	case keyAdd:
		err = d.addCurrent(ctrl, k.arg)
	case keyInfo:
		printProgress(ctrl)
	case keyQuit:
		return true
	default:
		fmt.Println(playHelp)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	return false
}

func (d *deps) addCurrent(ctrl *playback.Controller, ref string) error {
	t := ctrl.Snapshot().Track
	if t == nil {
		return playback.ErrNoTrack
	}
	p, err := resolvePlaylist(d.lib.Playlists, ref)
	if err != nil {
		return err
	}
	if d.lib.Playlists.AddTrack(*t, p.ID) {
		fmt.Printf("Added to %q\n", p.Name)
	} else {
		fmt.Printf("Already in %q\n", p.Name)
	}
	return nil
}

func printEvents(events <-chan playback.Event) {
	for ev := range events {
		switch ev.Type {
		case playback.EventTrackStarted:
			if ev.Track != nil {
				fmt.Printf("▶ %d. %s - %s\n", ev.Index+1, ev.Track.Title(), ev.Track.Artist())
			}
		case playback.EventStateChanged:
			fmt.Printf("%s\n", ev.State)
		case playback.EventStopped:
			fmt.Println("■ End of queue")
		}
	}
}

func printProgress(ctrl *playback.Controller) {
	s := ctrl.Snapshot()
	pos, dur, err := ctrl.Progress()
	if err != nil {
		fmt.Printf("%s (shuffle %s, repeat %s)\n", s.State, onOff(s.Shuffle), s.Repeat)
		return
	}
	title := ""
	if s.Track != nil {
		title = s.Track.Title() + " - " + s.Track.Artist()
	}
	fmt.Printf("%d/%d %s %s / %s  %s (shuffle %s, repeat %s)\n",
		s.Index+1, s.QueueLen, title, formatDuration(pos), formatDuration(dur),
		s.State, onOff(s.Shuffle), s.Repeat)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// readLines delivers input lines until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			zlog.Warn().Err(err).Msg("input closed")
		}
	}()
	return out
}

// watch treats every input line as the current contents of a search box and
// prints results as the debounced searcher delivers them.
func (d *deps) watch(ctx context.Context, r io.Reader) error {
	s := search.New(d.catalog, search.Config{Debounce: d.cfg.SearchDebounce()})

	var (
		mu      sync.Mutex
		last    string
		pending bool
	)
	settled := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for res := range s.Results() {
			switch {
			case res.Query == "":
				fmt.Println("(cleared)")
			case res.Err != nil:
				fmt.Printf("%q: %v\n", res.Query, describeCatalogError(res.Err))
			default:
				fmt.Printf("== %s ==\n", res.Query)
				printTracks(d.lib, res.Tracks)
			}

			mu.Lock()
			if res.Query == last {
				pending = false
				select {
				case settled <- struct{}{}:
				default:
				}
			}
			mu.Unlock()
		}
	}()

	lines := readLines(ctx, r)
	func() {
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-lines:
				if !ok {
					return
				}
				mu.Lock()
				last = strings.TrimSpace(line)
				pending = true
				select {
				case <-settled:
				default:
				}
				mu.Unlock()
				s.Type(last)
			}
		}
	}()

	mu.Lock()
	wait := pending
	mu.Unlock()
	if wait {
		select {
		case <-settled:
		case <-ctx.Done():
		case <-time.After(d.cfg.SearchDebounce() + d.cfg.CatalogTimeout()):
			zlog.Warn().Msg("watch: gave up waiting for the last search")
		}
	}

	s.Close()
	<-done
	return nil
}
