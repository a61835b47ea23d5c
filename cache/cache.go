// Package cache memoizes the normalized spans of documents that were already
// scanned during this process.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/brunobiangulo/pdfoutline/outline"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the number of documents kept when no size is configured.
const DefaultCapacity = 128

// Key identifies one version of a document on disk.
type Key struct {
	Path    string
	Size    int64
	ModTime int64 // UnixNano
}

// KeyFor builds the key of the file at path. When the file cannot be
// stat'ed the key falls back to the cleaned path alone.
func KeyFor(path string) Key {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Key{Path: abs}
	}
	return Key{Path: abs, Size: info.Size(), ModTime: info.ModTime().UnixNano()}
}

// SpanCache is a fixed-capacity, least-recently-used map from document key to
// normalized spans. It is safe for concurrent use. Cached slices are shared
// and must not be modified.
type SpanCache struct {
	lru      *lru.Cache[Key, []outline.NormalizedSpan]
	capacity int

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache holding up to capacity documents. A non-positive
// capacity selects DefaultCapacity.
func New(capacity int) (*SpanCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, err := lru.New[Key, []outline.NormalizedSpan](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating span cache: %w", err)
	}
	return &SpanCache{lru: l, capacity: capacity}, nil
}

// Get returns the spans stored for key and marks the entry recently used.
func (c *SpanCache) Get(key Key) ([]outline.NormalizedSpan, bool) {
	spans, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return spans, ok
}

// Put stores spans for key, evicting the least recently used entry when the
// cache is full. It reports whether an eviction happened.
func (c *SpanCache) Put(key Key, spans []outline.NormalizedSpan) bool {
	return c.lru.Add(key, spans)
}

// Len returns the number of cached documents.
func (c *SpanCache) Len() int { return c.lru.Len() }

// Capacity returns the maximum number of cached documents.
func (c *SpanCache) Capacity() int { return c.capacity }

// Stats returns the hit and miss counts since creation.
func (c *SpanCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
