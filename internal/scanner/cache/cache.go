// Package cache holds resolved barcode lookups keyed by code.
//
// Entries have two clocks: a freshness window after which a lookup should be
// re-fetched, and a longer garbage-collection horizon after which the entry
// is dropped entirely. A stale-but-present entry is still returned to the
// caller; staleness is the caller's decision to act on.
package cache

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/scansync/internal/scanner/models"
)

const (
	DefaultFreshFor = 5 * time.Minute
	DefaultGCAfter  = 30 * time.Minute
)

// Entry is a resolved product plus the wall-clock time it was stored.
type Entry struct {
	Product  models.Product
	StoredAt time.Time
}

// Cache is a process-wide, last-write-wins result cache. Safe for
// concurrent use.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	freshFor time.Duration
	gcAfter  time.Duration
	now      func() time.Time
}

func New(freshFor, gcAfter time.Duration) *Cache {
	if freshFor <= 0 {
		freshFor = DefaultFreshFor
	}
	if gcAfter <= 0 {
		gcAfter = DefaultGCAfter
	}
	return &Cache{
		entries:  make(map[string]Entry),
		freshFor: freshFor,
		gcAfter:  gcAfter,
		now:      time.Now,
	}
}

// NewWithClock is New with an injected time source for tests.
func NewWithClock(freshFor, gcAfter time.Duration, now func() time.Time) *Cache {
	c := New(freshFor, gcAfter)
	c.now = now
	return c
}

// Get returns the entry for code regardless of freshness. Entries past the
// GC horizon are evicted and reported as absent.
func (c *Cache) Get(code string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[code]
	if !ok {
		return Entry{}, false
	}
	if c.now().Sub(e.StoredAt) > c.gcAfter {
		delete(c.entries, code)
		return Entry{}, false
	}
	return e, true
}

// Put inserts or replaces the entry for code unconditionally.
func (c *Cache) Put(code string, p models.Product, observedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = Entry{Product: p, StoredAt: observedAt}
}

// Fresh reports whether e is within the freshness window at the cache's
// current time.
func (c *Cache) Fresh(e Entry) bool {
	return c.now().Sub(e.StoredAt) <= c.freshFor
}

// PrimeMany bulk-inserts products at the current time, used to warm the
// cache from the recently-resolved history so repeat scans skip the network.
func (c *Cache) PrimeMany(products []models.Product) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		if p.Barcode == "" {
			continue
		}
		c.entries[p.Barcode] = Entry{Product: p, StoredAt: now}
	}
}

// PurgeExpired drops every entry past the GC horizon and returns how many
// were removed.
func (c *Cache) PurgeExpired() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for code, e := range c.entries {
		if now.Sub(e.StoredAt) > c.gcAfter {
			delete(c.entries, code)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, including stale ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
