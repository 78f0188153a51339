// Package library provides the persisted user collections: liked songs,
// followed artists and playlists.
package library

import (
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/hearo/internal/infra/kvstore"
)

type loadResult int

const (
	loadEmpty   loadResult = iota // Nothing stored yet
	loadOK                        // Blob decoded
	loadCorrupt                   // Blob present but unreadable
)

// Collection is an ordered, de-duplicated list of items persisted as a single
// JSON array under one storage key.
// The list is loaded on first access and written back in full on every
// mutation.
type Collection[T any] struct {
	mu     sync.Mutex
	store  kvstore.Store
	name   string
	keyOf  func(T) (string, bool)
	items  []T
	loaded bool

	// normalize, when set, repairs each item read from storage.
	normalize func(T) T
}

// NewCollection creates a collection stored under name.
// keyOf returns the de-duplication key of an item; ok is false when the item
// has no key, and such items are never stored.
func NewCollection[T any](store kvstore.Store, name string, keyOf func(item T) (key string, ok bool)) *Collection[T] {
	return &Collection[T]{
		store: store,
		name:  name,
		keyOf: keyOf,
	}
}

// Items returns a copy of the current items, most recent first.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	return len(c.items)
}

// Contains reports whether an item with the same key is present.
func (c *Collection[T]) Contains(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	return c.indexLocked(item) >= 0
}

// Add inserts item at the front unless an item with the same key exists.
// Returns true if the item was inserted.
func (c *Collection[T]) Add(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	return c.addLocked(item)
}

// Remove deletes every item with the same key as item.
// Returns true if anything was removed.
func (c *Collection[T]) Remove(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	return c.removeLocked(item)
}

// Toggle removes item if present, otherwise adds it.
// Returns the resulting membership (true means now present).
func (c *Collection[T]) Toggle(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	if c.removeLocked(item) {
		return false
	}
	return c.addLocked(item)
}

// find returns the first item matching pred.
func (c *Collection[T]) find(pred func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	for _, it := range c.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// update runs fn over the item list and persists the result if fn reports a
// change.
func (c *Collection[T]) update(fn func(items []T) ([]T, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoadedLocked()
	next, changed := fn(c.items)
	if !changed {
		return false
	}
	c.items = next
	c.persistLocked()
	return true
}

func (c *Collection[T]) addLocked(item T) bool {
	key, ok := c.keyOf(item)
	if !ok {
		zlog.Debug().Msgf("library: %s: skipping item without key", c.name)
		return false
	}
	if c.indexOfKeyLocked(key) >= 0 {
		return false
	}

	next := make([]T, 0, len(c.items)+1)
	next = append(next, item)
	next = append(next, c.items...)
	c.items = next
	c.persistLocked()
	return true
}

func (c *Collection[T]) removeLocked(item T) bool {
	key, ok := c.keyOf(item)
	if !ok {
		return false
	}

	kept := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if k, ok := c.keyOf(it); ok && k == key {
			continue
		}
		kept = append(kept, it)
	}
	if len(kept) == len(c.items) {
		return false
	}
	c.items = kept
	c.persistLocked()
	return true
}

func (c *Collection[T]) indexLocked(item T) int {
	key, ok := c.keyOf(item)
	if !ok {
		return -1
	}
	return c.indexOfKeyLocked(key)
}

func (c *Collection[T]) indexOfKeyLocked(key string) int {
	for i, it := range c.items {
		if k, ok := c.keyOf(it); ok && k == key {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) ensureLoadedLocked() {
	if c.loaded {
		return
	}
	items, result, err := c.load()
	switch result {
	case loadCorrupt:
		zlog.Warn().Err(err).Msgf("library: %s: stored data unreadable, starting empty", c.name)
	case loadEmpty:
		zlog.Debug().Msgf("library: %s: nothing stored yet", c.name)
	case loadOK:
		zlog.Debug().Msgf("library: %s: loaded %d items", c.name, len(items))
	}
	c.items = items
	c.loaded = true
}

// load reads and decodes the stored blob. Any failure yields an empty list;
// the result tells the caller which case occurred.
func (c *Collection[T]) load() ([]T, loadResult, error) {
	empty := make([]T, 0)

	data, err := c.store.Get(c.name)
	if errors.Is(err, kvstore.ErrNotFound) {
		return empty, loadEmpty, nil
	}
	if err != nil {
		return empty, loadCorrupt, errors.Wrapf(err, "failed to read %s", c.name)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return empty, loadCorrupt, errors.Wrapf(err, "failed to decode %s", c.name)
	}
	if items == nil {
		return empty, loadOK, nil
	}
	return c.dedupe(items), loadOK, nil
}

// dedupe drops keyless items and later duplicates from data written by
// another process or an older build.
func (c *Collection[T]) dedupe(items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		key, ok := c.keyOf(it)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if c.normalize != nil {
			it = c.normalize(it)
		}
		out = append(out, it)
	}
	return out
}

func (c *Collection[T]) persistLocked() {
	data, err := json.Marshal(c.items)
	if err != nil {
		zlog.Error().Err(err).Msgf("library: %s: failed to encode", c.name)
		return
	}
	if err := c.store.Put(c.name, data); err != nil {
		zlog.Error().Err(err).Msgf("library: %s: failed to save", c.name)
	}
}
