package repository

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"portfolio_tracker/internal/entity"
	"portfolio_tracker/pkg/metrics"
)

// Clock abstracts time.Now so the cache's expiry behavior is testable.
type Clock func() time.Time

// SnapshotCache memoizes one portfolio snapshot per (wallet, chain) key for a
// bounded TTL. Writes replace entries wholesale; concurrent writers for the
// same key are idempotent overwrites (last writer wins).
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[string]snapshotEntry
	ttl     time.Duration
	now     Clock
	hits    uint64
	misses  uint64
}

type snapshotEntry struct {
	snapshot  *entity.PortfolioSnapshot
	expiresAt time.Time
}

// NewSnapshotCache creates a snapshot cache with the given TTL. A nil clock
// defaults to time.Now.
func NewSnapshotCache(ttl time.Duration, clock Clock) *SnapshotCache {
	if clock == nil {
		clock = time.Now
	}
	return &SnapshotCache{
		entries: make(map[string]snapshotEntry),
		ttl:     ttl,
		now:     clock,
	}
}

func cacheKey(walletAddress string, chainID int64) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(walletAddress), chainID)
}

// Get returns the cached snapshot for the key, if present and unexpired.
// Expired entries are evicted on access.
func (c *SnapshotCache) Get(walletAddress string, chainID int64) (*entity.PortfolioSnapshot, bool) {
	key := cacheKey(walletAddress, chainID)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[key]
	if !found {
		c.misses++
		metrics.SnapshotCacheMisses.Inc()
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.misses++
		metrics.SnapshotCacheMisses.Inc()
		return nil, false
	}

	c.hits++
	metrics.SnapshotCacheHits.Inc()
	return entry.snapshot, true
}

// Put stores the snapshot under the (wallet, chain) key, replacing any prior
// entry.
func (c *SnapshotCache) Put(walletAddress string, chainID int64, snapshot *entity.PortfolioSnapshot) {
	key := cacheKey(walletAddress, chainID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = snapshotEntry{
		snapshot:  snapshot,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops every entry for the wallet, across all chains, and
// returns the number of entries removed. Invalidating a wallet with no
// entries is a no-op.
func (c *SnapshotCache) Invalidate(walletAddress string) int {
	prefix := strings.ToLower(walletAddress) + "|"

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats reports the cache's current entry count and lifetime hit/miss
// counters.
func (c *SnapshotCache) Stats() entity.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return entity.CacheStats{
		Entries:    len(c.entries),
		Hits:       c.hits,
		Misses:     c.misses,
		TTLSeconds: c.ttl.Seconds(),
	}
}
