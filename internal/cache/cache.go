// Package cache stores the last applied colour result per browser window.
package cache

import (
	"maps"
	"slices"
	"sync"

	"github.com/jmylchreest/tabtint/internal/meta"
)

// Cache is safe for concurrent use. Writes are ordered by generation so a
// resolution that started earlier never replaces the result of a later one.
type Cache struct {
	mu      sync.RWMutex
	next    map[int]uint64
	entries map[int]record
}

type record struct {
	gen   uint64
	entry meta.Entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		next:    make(map[int]uint64),
		entries: make(map[int]record),
	}
}

// Begin reserves a generation for a resolution of windowID.
func (c *Cache) Begin(windowID int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next[windowID]++
	return c.next[windowID]
}

// Put stores entry if no result from a later generation is already stored.
// It reports whether the entry was kept.
func (c *Cache) Put(windowID int, gen uint64, entry meta.Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[windowID]; ok && cur.gen > gen {
		return false
	}
	c.entries[windowID] = record{gen: gen, entry: entry}
	return true
}

// Get returns the cached entry for windowID.
func (c *Cache) Get(windowID int) (meta.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[windowID]
	return r.entry, ok
}

// Delete forgets windowID.
func (c *Cache) Delete(windowID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, windowID)
}

// Clear drops every entry. Generations are kept so in-flight resolutions
// still order correctly against new ones.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Windows returns the ids of windows with a cached entry, sorted.
func (c *Cache) Windows() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}
