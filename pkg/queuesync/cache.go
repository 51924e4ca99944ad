package queuesync

import (
	"sync"
	"time"
)

// QueryCache holds the last-known-good snapshot per key. A stale snapshot
// is still served while a refresh is in flight; previously-successful data
// is never replaced by an empty placeholder.
type QueryCache struct {
	// StaleHealthy and StaleDegraded bound how old a snapshot may be
	// before a read should trigger a background refetch, depending on
	// whether push is currently trusted.
	StaleHealthy  time.Duration
	StaleDegraded time.Duration

	mu      sync.RWMutex
	entries map[SnapshotKey]*cacheEntry
}

type cacheEntry struct {
	snapshot    *Snapshot
	fetchedAt   time.Time
	invalidated bool
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		StaleHealthy:  90 * time.Second,
		StaleDegraded: 8 * time.Second,
		entries:       make(map[SnapshotKey]*cacheEntry),
	}
}

// Get returns the cached snapshot for key, if any. Invalidated entries are
// still returned: stale-but-present beats loading.
func (c *QueryCache) Get(key SnapshotKey) (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.snapshot == nil {
		return nil, false
	}
	return e.snapshot, true
}

func (c *QueryCache) Set(key SnapshotKey, snap *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{snapshot: snap, fetchedAt: time.Now()}
}

// Restore puts back an exact snapshot without touching its freshness,
// used by optimistic rollback.
func (c *QueryCache) Restore(key SnapshotKey, snap *Snapshot, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{snapshot: snap, fetchedAt: fetchedAt}
}

// FetchedAt reports when the key was last filled.
func (c *QueryCache) FetchedAt(key SnapshotKey) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Invalidate marks a key as needing a refetch. Local mutations settling,
// matching push events, and offline-to-online transitions all funnel here;
// there is exactly one invalidation path.
func (c *QueryCache) Invalidate(key SnapshotKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.invalidated = true
	}
}

// NeedsRefresh reports whether a read of key should trigger a refetch:
// missing, explicitly invalidated, or older than the health-dependent
// stale time.
func (c *QueryCache) NeedsRefresh(key SnapshotKey, healthy bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.snapshot == nil || e.invalidated {
		return true
	}

	staleTime := c.StaleDegraded
	if healthy {
		staleTime = c.StaleHealthy
	}
	return time.Since(e.fetchedAt) > staleTime
}
