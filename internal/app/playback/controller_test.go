package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/hearo/internal/domain/track"
)

// fakeEngine mirrors mpv: media is unloaded at end of file, and transport
// commands are ignored while nothing is loaded.
type fakeEngine struct {
	mu       sync.Mutex
	active   bool
	playing  bool
	loads    []string
	seeks    []time.Duration
	pauses   int
	resumes  int
	stops    int
	position time.Duration
	duration time.Duration
	loadErr  error
}

func (e *fakeEngine) Load(_ context.Context, url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadErr != nil {
		return e.loadErr
	}
	e.loads = append(e.loads, url)
	e.active = true
	e.playing = true
	return nil
}

func (e *fakeEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return nil
	}
	e.pauses++
	e.playing = false
	return nil
}

func (e *fakeEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return nil
	}
	e.resumes++
	e.playing = true
	return nil
}

func (e *fakeEngine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return nil
	}
	e.seeks = append(e.seeks, pos)
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	e.active = false
	e.playing = false
	return nil
}

// endOfFile simulates the media playing to its end.
func (e *fakeEngine) endOfFile() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.playing = false
}

func (e *fakeEngine) isPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *fakeEngine) Position() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position, nil
}

func (e *fakeEngine) Duration() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration, nil
}

func (e *fakeEngine) loadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.loads)
}

func newTrack(id int64, name string) track.Track {
	url := "https://audio.example.com/" + name + ".m4a"
	millis := int64(200000)
	return track.Track{ID: &id, Name: &name, PreviewURL: &url, TrackTimeMillis: &millis}
}

func threeTracks() []track.Track {
	return []track.Track{newTrack(1, "a"), newTrack(2, "b"), newTrack(3, "c")}
}

// setup returns a controller playing the track at index of [A, B, C].
func setup(t *testing.T, index int, config Config) (*Controller, *fakeEngine) {
	t.Helper()
	engine := &fakeEngine{}
	c := NewController(engine, config)
	require.NoError(t, c.SetQueue(threeTracks(), index))
	require.NoError(t, c.Play(context.Background(), index))
	return c, engine
}

func TestController_Play(t *testing.T) {
	c, engine := setup(t, 1, Config{})
	defer c.Close()

	s := c.Snapshot()
	assert.Equal(t, 1, s.Index)
	assert.True(t, s.IsPlaying())
	require.NotNil(t, s.Track)
	assert.Equal(t, "b", s.Track.Title())
	assert.Equal(t, []string{"https://audio.example.com/b.m4a"}, engine.loads)

	ev := <-c.Events()
	assert.Equal(t, EventTrackStarted, ev.Type)
	assert.Equal(t, 1, ev.Index)
	assert.Equal(t, StatePlaying, ev.State)
}

func TestController_PlayErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		c := NewController(&fakeEngine{}, Config{})
		assert.True(t, errors.Is(c.Play(ctx, 0), ErrQueueEmpty))
		assert.True(t, errors.Is(c.Next(ctx), ErrQueueEmpty))
		assert.True(t, errors.Is(c.Previous(ctx), ErrQueueEmpty))
		assert.True(t, errors.Is(c.SetQueue(nil, 0), ErrQueueEmpty))
	})

	t.Run("index out of range", func(t *testing.T) {
		c := NewController(&fakeEngine{}, Config{})
		assert.True(t, errors.Is(c.SetQueue(threeTracks(), 3), ErrIndexOutOfRange))
		require.NoError(t, c.SetQueue(threeTracks(), 0))
		assert.True(t, errors.Is(c.Play(ctx, -1), ErrIndexOutOfRange))
	})

	t.Run("no preview", func(t *testing.T) {
		engine := &fakeEngine{}
		c := NewController(engine, Config{})
		tracks := threeTracks()
		tracks[1].PreviewURL = nil
		require.NoError(t, c.SetQueue(tracks, 0))
		require.NoError(t, c.Play(ctx, 0))

		err := c.Next(ctx)
		assert.True(t, errors.Is(err, ErrNoPreview))
		s := c.Snapshot()
		assert.Equal(t, 1, s.Index)
		assert.False(t, s.IsPlaying())
		assert.Equal(t, 1, engine.stops)

		require.NoError(t, c.Next(ctx))
		assert.Equal(t, 2, c.Snapshot().Index)
	})

	t.Run("engine failure", func(t *testing.T) {
		engine := &fakeEngine{loadErr: errors.New("no audio device")}
		c := NewController(engine, Config{})
		require.NoError(t, c.SetQueue(threeTracks(), 0))
		assert.Error(t, c.Play(ctx, 0))
		assert.Equal(t, StateIdle, c.Snapshot().State)
	})
}

func TestController_NextPrevious(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		forward  bool
		expected int
	}{
		{name: "next from first", start: 0, forward: true, expected: 1},
		{name: "next wraps", start: 2, forward: true, expected: 0},
		{name: "previous from middle", start: 1, forward: false, expected: 0},
		{name: "previous wraps", start: 0, forward: false, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := setup(t, tt.start, Config{})
			ctx := context.Background()
			if tt.forward {
				require.NoError(t, c.Next(ctx))
			} else {
				require.NoError(t, c.Previous(ctx))
			}
			assert.Equal(t, tt.expected, c.Snapshot().Index)
			assert.True(t, c.Snapshot().IsPlaying())
		})
	}
}

func TestController_Shuffle(t *testing.T) {
	picks := []int{2, 2, 0}
	var calls []int
	rnd := func(n int) int {
		calls = append(calls, n)
		p := picks[0]
		picks = picks[1:]
		return p
	}

	c, _ := setup(t, 0, Config{RandIntN: rnd})
	ctx := context.Background()

	assert.True(t, c.ToggleShuffle())
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, 2, c.Snapshot().Index)

	// Shuffle may pick the current track again.
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, 2, c.Snapshot().Index)

	require.NoError(t, c.Previous(ctx))
	assert.Equal(t, 0, c.Snapshot().Index)

	assert.Equal(t, []int{3, 3, 3}, calls)

	assert.False(t, c.ToggleShuffle())
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, 1, c.Snapshot().Index)
}

func TestController_CycleRepeatMode(t *testing.T) {
	c := NewController(&fakeEngine{}, Config{})

	assert.Equal(t, RepeatOff, c.Snapshot().Repeat)
	assert.Equal(t, RepeatAll, c.CycleRepeatMode())
	assert.Equal(t, RepeatOne, c.CycleRepeatMode())
	assert.Equal(t, RepeatOff, c.CycleRepeatMode())
}

func TestController_TrackFinished(t *testing.T) {
	tests := []struct {
		name          string
		repeat        RepeatMode
		start         int
		expectedIndex int
		expectedState State
		expectedLoads int
	}{
		{name: "off advances", repeat: RepeatOff, start: 0, expectedIndex: 1, expectedState: StatePlaying, expectedLoads: 2},
		{name: "off stops at last", repeat: RepeatOff, start: 2, expectedIndex: 2, expectedState: StateIdle, expectedLoads: 1},
		{name: "all wraps", repeat: RepeatAll, start: 2, expectedIndex: 0, expectedState: StatePlaying, expectedLoads: 2},
		{name: "one restarts", repeat: RepeatOne, start: 1, expectedIndex: 1, expectedState: StatePlaying, expectedLoads: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, engine := setup(t, tt.start, Config{})
			for c.Snapshot().Repeat != tt.repeat {
				c.CycleRepeatMode()
			}

			engine.endOfFile()
			require.NoError(t, c.TrackFinished(context.Background()))

			s := c.Snapshot()
			assert.Equal(t, tt.expectedIndex, s.Index)
			assert.Equal(t, tt.expectedState, s.State)
			assert.Equal(t, tt.expectedLoads, engine.loadCount())
			assert.Equal(t, tt.expectedState == StatePlaying, engine.isPlaying())
		})
	}
}

func TestController_RepeatOneNeverMoves(t *testing.T) {
	c, engine := setup(t, 2, Config{})
	c.CycleRepeatMode()
	c.CycleRepeatMode()
	require.Equal(t, RepeatOne, c.Snapshot().Repeat)

	for range 5 {
		engine.endOfFile()
		require.NoError(t, c.TrackFinished(context.Background()))
		assert.Equal(t, 2, c.Snapshot().Index)
		assert.True(t, engine.isPlaying())
	}
	url := "https://audio.example.com/c.m4a"
	assert.Equal(t, []string{url, url, url, url, url, url}, engine.loads)
}

func TestController_RepeatOneRestartsPausedTrack(t *testing.T) {
	c, engine := setup(t, 1, Config{})
	c.CycleRepeatMode()
	c.CycleRepeatMode()
	require.NoError(t, c.Pause())
	require.Equal(t, StatePaused, c.Snapshot().State)

	engine.endOfFile()
	require.NoError(t, c.TrackFinished(context.Background()))

	s := c.Snapshot()
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, StatePlaying, s.State)
	assert.True(t, engine.isPlaying())
	assert.Equal(t, 2, engine.loadCount())
}

func TestController_StopAtEndEmitsEvent(t *testing.T) {
	c, engine := setup(t, 2, Config{})
	<-c.Events()

	require.NoError(t, c.TrackFinished(context.Background()))
	ev := <-c.Events()
	assert.Equal(t, EventStopped, ev.Type)
	assert.Nil(t, ev.Track)
	assert.Equal(t, StateIdle, ev.State)
	assert.Equal(t, 1, engine.stops)

	// Finishing again after stop does nothing.
	require.NoError(t, c.TrackFinished(context.Background()))
	assert.Equal(t, 1, engine.stops)
}

func TestController_PauseResume(t *testing.T) {
	c, engine := setup(t, 0, Config{})
	ctx := context.Background()

	require.NoError(t, c.Pause())
	assert.Equal(t, StatePaused, c.Snapshot().State)
	require.NoError(t, c.Pause())
	assert.Equal(t, 1, engine.pauses)

	require.NoError(t, c.Resume())
	assert.Equal(t, StatePlaying, c.Snapshot().State)
	require.NoError(t, c.Resume())
	assert.Equal(t, 1, engine.resumes)

	require.NoError(t, c.TogglePlayPause(ctx))
	assert.Equal(t, StatePaused, c.Snapshot().State)
	require.NoError(t, c.TogglePlayPause(ctx))
	assert.Equal(t, StatePlaying, c.Snapshot().State)
}

func TestController_PauseWithoutTrack(t *testing.T) {
	engine := &fakeEngine{}
	c := NewController(engine, Config{})

	assert.NoError(t, c.Pause())
	assert.NoError(t, c.Resume())
	assert.Equal(t, 0, engine.pauses+engine.resumes)
	assert.True(t, errors.Is(c.TogglePlayPause(context.Background()), ErrQueueEmpty))
}

func TestController_TogglePlayPauseReplaysAfterStop(t *testing.T) {
	c, engine := setup(t, 2, Config{})
	require.NoError(t, c.TrackFinished(context.Background()))
	require.Equal(t, StateIdle, c.Snapshot().State)

	require.NoError(t, c.TogglePlayPause(context.Background()))
	assert.Equal(t, StatePlaying, c.Snapshot().State)
	assert.Equal(t, 2, c.Snapshot().Index)
	assert.Equal(t, 2, engine.loadCount())
}

func TestController_Seek(t *testing.T) {
	tests := []struct {
		name           string
		engineDuration time.Duration
		fraction       float64
		expected       time.Duration
	}{
		{name: "half of preview", engineDuration: 30 * time.Second, fraction: 0.5, expected: 15 * time.Second},
		{name: "clamped high", engineDuration: 30 * time.Second, fraction: 1.7, expected: 30 * time.Second},
		{name: "clamped low", engineDuration: 30 * time.Second, fraction: -1, expected: 0},
		{name: "falls back to track length", engineDuration: 0, fraction: 0.25, expected: 50 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, engine := setup(t, 0, Config{})
			engine.duration = tt.engineDuration

			require.NoError(t, c.Seek(tt.fraction))
			assert.Equal(t, []time.Duration{tt.expected}, engine.seeks)
		})
	}
}

func TestController_SeekErrors(t *testing.T) {
	c := NewController(&fakeEngine{}, Config{})
	assert.True(t, errors.Is(c.Seek(0.5), ErrNoTrack))

	tracks := threeTracks()
	tracks[0].TrackTimeMillis = nil
	require.NoError(t, c.SetQueue(tracks, 0))
	require.NoError(t, c.Play(context.Background(), 0))
	assert.True(t, errors.Is(c.Seek(0.5), ErrUnknownDuration))
}

func TestController_Progress(t *testing.T) {
	c, engine := setup(t, 0, Config{})
	engine.position = 12 * time.Second
	engine.duration = 30 * time.Second

	pos, dur, err := c.Progress()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, pos)
	assert.Equal(t, 30*time.Second, dur)
}

func TestController_Watch(t *testing.T) {
	c, engine := setup(t, 0, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan struct{})
	done := make(chan struct{})
	go func() {
		c.Watch(ctx, finished)
		close(done)
	}()

	finished <- struct{}{}
	finished <- struct{}{}
	close(finished)
	<-done

	assert.Equal(t, 2, c.Snapshot().Index)
	assert.Equal(t, 3, engine.loadCount())
}

func TestController_Close(t *testing.T) {
	c, engine := setup(t, 0, Config{})
	c.Close()
	c.Close()

	assert.Equal(t, 1, engine.stops)
	for range c.Events() {
	}
	c.ToggleShuffle()
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "one", RepeatOne.String())
	assert.Equal(t, "stopped", EventStopped.String())
	assert.Equal(t, "unknown", State(9).String())
}
