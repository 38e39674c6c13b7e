// Package cache provides a bounded in-memory store for synthesized audio.
//
// Entries are keyed by (text, language) and evicted in insertion order when
// the cache is full: the oldest entry goes first, regardless of how often it
// was read. This matches the access pattern of a voice assistant that mostly
// repeats a small set of recent phrases.
package cache

import (
	"sync"
)

// DefaultCapacity is the number of entries held before eviction starts.
const DefaultCapacity = 50

// Cache is a fixed-capacity audio cache with insertion-order eviction.
// It is safe for concurrent use. Stored values are never mutated; a Put for
// an existing key is a no-op.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]byte
	order    []string
}

// New creates a cache with the given capacity.
// A capacity <= 0 falls back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string][]byte, capacity),
		order:    make([]string, 0, capacity),
	}
}

// Key builds the cache key for a (text, language) pair.
func Key(text, language string) string {
	return text + "_" + language
}

// Get returns the audio stored for (text, language), if any.
func (c *Cache) Get(text, language string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	audio, ok := c.entries[Key(text, language)]
	return audio, ok
}

// Put stores audio for (text, language), evicting the oldest entry if the
// cache is full. Storing an already-present key leaves the cache unchanged.
func (c *Cache) Put(text, language string, audio []byte) {
	key := Key(text, language)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = audio
	c.order = append(c.order, key)
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte, c.capacity)
	c.order = c.order[:0]
}
