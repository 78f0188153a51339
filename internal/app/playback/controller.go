package playback

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/hearo/internal/domain/track"
)

// Errors
var (
	ErrNoTrack         = errors.New("no track loaded")
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrNoPreview       = errors.New("track has no preview")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownDuration = errors.New("track duration unknown")
)

// Engine is the underlying media player.
type Engine interface {
	// Load replaces the current media with url and starts playing it.
	Load(ctx context.Context, url string) error
	Pause() error
	Resume() error
	// Seek moves to an absolute position in the current media.
	Seek(pos time.Duration) error
	Stop() error
	// Position returns the playback position of the current media.
	Position() (time.Duration, error)
	// Duration returns the length of the current media, or 0 when unknown.
	Duration() (time.Duration, error)
}

// Config holds controller configuration.
type Config struct {
	RandIntN    func(n int) int // Random source for shuffle; defaults to math/rand/v2
	EventBuffer int             // Event channel capacity; defaults to 16
}

// Snapshot is the observable sequencer state.
type Snapshot struct {
	Track    *track.Track
	Index    int
	QueueLen int
	State    State
	Shuffle  bool
	Repeat   RepeatMode
}

// IsPlaying reports whether a track is currently playing.
func (s Snapshot) IsPlaying() bool {
	return s.State == StatePlaying
}

// Controller sequences a queue of tracks over an Engine.
type Controller struct {
	mu sync.Mutex

	engine Engine

	// Queue
	tracks  []track.Track
	index   int
	loaded  bool // A track at index has been loaded into the engine
	state   State
	shuffle bool
	repeat  RepeatMode

	randIntN func(n int) int

	// Events
	eventCh chan Event
	closed  bool
}

// NewController creates a new playback controller.
func NewController(engine Engine, config Config) *Controller {
	randIntN := config.RandIntN
	if randIntN == nil {
		randIntN = rand.IntN
	}
	buf := config.EventBuffer
	if buf <= 0 {
		buf = 16
	}
	return &Controller{
		engine:   engine,
		tracks:   make([]track.Track, 0),
		state:    StateIdle,
		randIntN: randIntN,
		eventCh:  make(chan Event, buf),
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// SetQueue replaces the queue and points the cursor at index.
// Playback is not started; call Play.
func (c *Controller) SetQueue(tracks []track.Track, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(tracks) == 0 {
		return ErrQueueEmpty
	}
	if index < 0 || index >= len(tracks) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", index, len(tracks))
	}

	c.tracks = make([]track.Track, len(tracks))
	copy(c.tracks, tracks)
	c.index = index
	c.loaded = false
	return nil
}

// Play loads the track at index and starts it.
func (c *Controller) Play(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.playLocked(ctx, index)
}

// Pause pauses playback. It is a no-op unless a track is playing.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded || c.state != StatePlaying {
		return nil
	}
	if err := c.engine.Pause(); err != nil {
		return errors.Wrap(err, "failed to pause")
	}
	c.state = StatePaused
	c.sendEventLocked(Event{Type: EventStateChanged})
	return nil
}

// Resume resumes paused playback. It is a no-op unless a track is paused.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded || c.state != StatePaused {
		return nil
	}
	if err := c.engine.Resume(); err != nil {
		return errors.Wrap(err, "failed to resume")
	}
	c.state = StatePlaying
	c.sendEventLocked(Event{Type: EventStateChanged})
	return nil
}

// TogglePlayPause pauses a playing track, resumes a paused one, and replays
// the current track once playback has stopped.
func (c *Controller) TogglePlayPause(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	index := c.index
	hasQueue := len(c.tracks) > 0
	c.mu.Unlock()

	switch state {
	case StatePlaying:
		return c.Pause()
	case StatePaused:
		return c.Resume()
	default:
		if !hasQueue {
			return ErrQueueEmpty
		}
		return c.Play(ctx, index)
	}
}

// Seek moves playback to fraction (0..1) of the current track's duration.
func (c *Controller) Seek(fraction float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return ErrNoTrack
	}
	duration := c.durationLocked()
	if duration <= 0 {
		return ErrUnknownDuration
	}

	fraction = min(max(fraction, 0), 1)
	pos := time.Duration(fraction * float64(duration))
	if err := c.engine.Seek(pos); err != nil {
		return errors.Wrapf(err, "failed to seek to %v", pos)
	}
	return nil
}

// Next advances to the next track, wrapping at the end of the queue.
// With shuffle on, any index may be picked, including the current one.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tracks) == 0 {
		return ErrQueueEmpty
	}
	return c.playLocked(ctx, c.nextIndexLocked())
}

// Previous moves to the previous track, wrapping at the start of the queue.
func (c *Controller) Previous(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.tracks)
	if n == 0 {
		return ErrQueueEmpty
	}
	if c.shuffle {
		return c.playLocked(ctx, c.randIntN(n))
	}
	return c.playLocked(ctx, (c.index-1+n)%n)
}

// TrackFinished handles the end of the current media.
func (c *Controller) TrackFinished(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded || len(c.tracks) == 0 {
		return nil
	}

	switch c.repeat {
	case RepeatOne:
		// The engine has unloaded the media by now, so reload it from the start.
		zlog.Debug().Msgf("playback: repeating track %d", c.index)
		return c.playLocked(ctx, c.index)

	case RepeatAll:
		return c.playLocked(ctx, c.nextIndexLocked())

	default:
		if c.index < len(c.tracks)-1 {
			return c.playLocked(ctx, c.nextIndexLocked())
		}
		zlog.Debug().Msg("playback: end of queue")
		if err := c.engine.Stop(); err != nil {
			zlog.Warn().Err(err).Msg("playback: failed to stop engine")
		}
		c.loaded = false
		c.state = StateIdle
		c.sendEventLocked(Event{Type: EventStopped})
		return nil
	}
}

// ToggleShuffle flips shuffle and returns the new setting.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shuffle = !c.shuffle
	c.sendEventLocked(Event{Type: EventModeChanged})
	return c.shuffle
}

// CycleRepeatMode moves to the next repeat mode (off, all, one) and returns it.
func (c *Controller) CycleRepeatMode() RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repeat = c.repeat.next()
	c.sendEventLocked(Event{Type: EventModeChanged})
	return c.repeat
}

// Snapshot returns the current sequencer state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Track:    c.currentLocked(),
		Index:    c.index,
		QueueLen: len(c.tracks),
		State:    c.state,
		Shuffle:  c.shuffle,
		Repeat:   c.repeat,
	}
}

// Progress returns the position and duration of the current track.
func (c *Controller) Progress() (time.Duration, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return 0, 0, ErrNoTrack
	}
	pos, err := c.engine.Position()
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to read position")
	}
	return pos, c.durationLocked(), nil
}

// Watch calls TrackFinished for every signal on finished until ctx is done or
// finished is closed.
func (c *Controller) Watch(ctx context.Context, finished <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-finished:
			if !ok {
				return
			}
			if err := c.TrackFinished(ctx); err != nil {
				zlog.Error().Err(err).Msg("playback: failed to advance after track end")
			}
		}
	}
}

// Close stops playback and closes the event channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.loaded {
		_ = c.engine.Stop()
	}
	c.loaded = false
	c.state = StateIdle
	c.closed = true
	close(c.eventCh)
}

// playLocked moves the cursor to index and loads that track.
// The cursor moves even when the track cannot be played, so Next and
// Previous can step past it.
// Must be called with lock held.
func (c *Controller) playLocked(ctx context.Context, index int) error {
	if len(c.tracks) == 0 {
		return ErrQueueEmpty
	}
	if index < 0 || index >= len(c.tracks) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", index, len(c.tracks))
	}

	c.index = index
	t := c.tracks[index]

	url := t.Preview()
	if url == "" {
		c.haltLocked()
		return errors.Wrapf(ErrNoPreview, "%s", t.Title())
	}

	if err := c.engine.Load(ctx, url); err != nil {
		c.haltLocked()
		return errors.Wrapf(err, "failed to load %s", t.Title())
	}

	c.loaded = true
	c.state = StatePlaying
	zlog.Debug().Msgf("playback: playing index=%d track=%s", index, t.Title())
	c.sendEventLocked(Event{Type: EventTrackStarted})
	return nil
}

// haltLocked stops whatever the engine is playing after a failed load.
// Must be called with lock held.
func (c *Controller) haltLocked() {
	if c.loaded {
		if err := c.engine.Stop(); err != nil {
			zlog.Warn().Err(err).Msg("playback: failed to stop engine")
		}
	}
	c.loaded = false
	c.state = StateIdle
}

func (c *Controller) nextIndexLocked() int {
	n := len(c.tracks)
	if c.shuffle {
		return c.randIntN(n)
	}
	return (c.index + 1) % n
}

func (c *Controller) currentLocked() *track.Track {
	if len(c.tracks) == 0 {
		return nil
	}
	t := c.tracks[c.index]
	return &t
}

// durationLocked returns the engine's media length, falling back to the
// catalog track length.
func (c *Controller) durationLocked() time.Duration {
	if d, err := c.engine.Duration(); err == nil && d > 0 {
		return d
	}
	if t := c.currentLocked(); t != nil {
		return t.Duration()
	}
	return 0
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	e.Track = c.currentLocked()
	e.Index = c.index
	e.State = c.state
	if e.Type == EventStopped {
		e.Track = nil
	}

	select {
	case c.eventCh <- e:
	default:
		// Channel full, drop event
	}
}
