// Package mpv implements the playback engine on top of libmpv.
package mpv

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/wildeyedskies/go-mpv/mpv"
)

// Engine plays preview URLs with libmpv and reports when media ends.
type Engine struct {
	mu sync.Mutex
	m  *mpv.Mpv

	// active is true while mpv has a file loaded that we asked for.
	active bool
	// skipEnds counts END_FILE events caused by our own loadfile/stop.
	skipEnds int

	finished chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates and initializes an audio-only mpv instance and starts its
// event loop.
func New() (*Engine, error) {
	m := mpv.Create()
	_ = m.SetOptionString("audio-display", "no")
	_ = m.SetOptionString("video", "no")

	if err := m.Initialize(); err != nil {
		m.TerminateDestroy()
		return nil, errors.Wrap(err, "failed to initialize mpv")
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		m:        m,
		finished: make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go e.eventLoop(ctx)
	return e, nil
}

// Finished signals each time the current media plays to its end.
func (e *Engine) Finished() <-chan struct{} {
	return e.finished
}

// Load replaces the current media with url and starts playing it.
func (e *Engine) Load(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		e.skipEnds++
	}
	if err := e.m.Command([]string{"loadfile", url, "replace"}); err != nil {
		if e.active {
			e.skipEnds--
		}
		return errors.Wrap(err, "mpv loadfile failed")
	}
	e.active = true
	if err := e.m.Command([]string{"set", "pause", "no"}); err != nil {
		return errors.Wrap(err, "mpv unpause failed")
	}
	zlog.Debug().Msgf("mpv: loaded %s", url)
	return nil
}

// Pause pauses playback.
func (e *Engine) Pause() error {
	return e.command("set", "pause", "yes")
}

// Resume resumes playback.
func (e *Engine) Resume() error {
	return e.command("set", "pause", "no")
}

// Seek moves to an absolute position.
func (e *Engine) Seek(pos time.Duration) error {
	secs := strconv.FormatFloat(pos.Seconds(), 'f', 3, 64)
	return e.command("seek", secs, "absolute")
}

// Stop unloads the current media.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}
	e.skipEnds++
	e.active = false
	if err := e.m.Command([]string{"stop"}); err != nil {
		e.skipEnds--
		return errors.Wrap(err, "mpv stop failed")
	}
	return nil
}

// Position returns the playback position.
func (e *Engine) Position() (time.Duration, error) {
	return e.seconds("time-pos")
}

// Duration returns the media length.
func (e *Engine) Duration() (time.Duration, error) {
	return e.seconds("duration")
}

// Close stops the event loop and destroys the mpv instance.
func (e *Engine) Close() {
	e.cancel()
	<-e.done

	e.mu.Lock()
	defer e.mu.Unlock()
	e.m.TerminateDestroy()
	close(e.finished)
}

func (e *Engine) command(args ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}
	if err := e.m.Command(args); err != nil {
		return errors.Wrapf(err, "mpv %s failed", args[0])
	}
	return nil
}

func (e *Engine) seconds(property string) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return 0, nil
	}
	v, err := e.m.GetProperty(property, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, errors.Wrapf(err, "mpv get %s failed", property)
	}
	secs, ok := v.(float64)
	if !ok {
		return 0, errors.Newf("mpv %s: unexpected type %T", property, v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (e *Engine) eventLoop(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := e.m.WaitEvent(1)
		if ev == nil || ev.Event_Id != mpv.EVENT_END_FILE {
			continue
		}
		e.handleEndFile()
	}
}

func (e *Engine) handleEndFile() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.skipEnds > 0 {
		e.skipEnds--
		return
	}
	e.active = false
	zlog.Debug().Msg("mpv: end of file")

	select {
	case e.finished <- struct{}{}:
	default:
	}
}
