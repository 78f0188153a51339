// Package search provides debounced catalog search for type-ahead input.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/hearo/internal/domain/track"
)

const defaultDebounce = 500 * time.Millisecond

// Catalog is the search backend.
type Catalog interface {
	Search(ctx context.Context, query string) ([]track.Track, error)
}

// Result is delivered for every dispatched query.
// An empty Query with no Tracks means the input was cleared.
type Result struct {
	Query  string
	Tracks []track.Track
	Err    error
}

// Config holds searcher configuration.
type Config struct {
	Debounce time.Duration // Idle delay before a typed query is sent
}

// Searcher dispatches a query once input has been idle for the debounce
// delay. Newer input cancels both the pending dispatch and any request still
// in flight, so only the latest query produces a result.
type Searcher struct {
	mu sync.Mutex

	catalog  Catalog
	debounce time.Duration

	timer     *time.Timer
	cancelReq context.CancelFunc
	seq       uint64 // Incremented on every input; stale results are dropped
	closed    bool

	results chan Result
	wg      sync.WaitGroup
}

// New creates a searcher over catalog.
func New(catalog Catalog, cfg Config) *Searcher {
	d := cfg.Debounce
	if d <= 0 {
		d = defaultDebounce
	}
	return &Searcher{
		catalog:  catalog,
		debounce: d,
		results:  make(chan Result, 1),
	}
}

// Results returns the result channel. It is closed by Close.
func (s *Searcher) Results() <-chan Result {
	return s.results
}

// Type records new input. The query is sent after the debounce delay unless
// more input arrives first. Empty input clears results immediately.
func (s *Searcher) Type(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	seq := s.supersedeLocked()
	if strings.TrimSpace(query) == "" {
		s.deliverLocked(Result{Tracks: make([]track.Track, 0)})
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.dispatch(seq, query)
	})
}

// Submit sends query right away, cancelling any pending or in-flight search.
func (s *Searcher) Submit(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	seq := s.supersedeLocked()
	if strings.TrimSpace(query) == "" {
		s.deliverLocked(Result{Tracks: make([]track.Track, 0)})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.dispatch(seq, query)
}

// Close cancels pending work, waits for in-flight requests to return and
// closes the result channel.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.supersedeLocked()
	s.mu.Unlock()

	s.wg.Wait()
	close(s.results)
}

// supersedeLocked stops the pending timer, cancels the in-flight request and
// returns the sequence number for the new input.
// Must be called with lock held.
func (s *Searcher) supersedeLocked() uint64 {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelReq != nil {
		s.cancelReq()
		s.cancelReq = nil
	}
	s.seq++
	return s.seq
}

func (s *Searcher) dispatch(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelReq = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		zlog.Debug().Msgf("search: dispatching %q", query)
		tracks, err := s.catalog.Search(ctx, query)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || seq != s.seq {
			zlog.Debug().Msgf("search: dropping stale result for %q", query)
			return
		}
		s.cancelReq = nil
		if err != nil {
			zlog.Warn().Err(err).Msgf("search: %q failed", query)
		}
		s.deliverLocked(Result{Query: query, Tracks: tracks, Err: err})
	}()
}

// deliverLocked replaces any undelivered result with r.
// Must be called with lock held.
func (s *Searcher) deliverLocked(r Result) {
	select {
	case <-s.results:
	default:
	}
	select {
	case s.results <- r:
	default:
	}
}
