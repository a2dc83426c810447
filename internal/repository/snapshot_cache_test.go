package repository

import (
	"testing"
	"time"

	"portfolio_tracker/internal/entity"
)

const testWallet = "0xAbC0000000000000000000000000000000000001"

func testSnapshot(total float64) *entity.PortfolioSnapshot {
	return &entity.PortfolioSnapshot{
		WalletAddress: testWallet,
		ChainID:       1,
		ChainName:     "Ethereum",
		Tokens:        []entity.ProcessedToken{},
		TotalValueUSD: total,
	}
}

func TestSnapshotCachePutGet(t *testing.T) {
	cache := NewSnapshotCache(5*time.Minute, nil)

	if _, found := cache.Get(testWallet, 1); found {
		t.Fatal("expected miss on empty cache")
	}

	snap := testSnapshot(100)
	cache.Put(testWallet, 1, snap)

	got, found := cache.Get(testWallet, 1)
	if !found {
		t.Fatal("expected hit after Put")
	}
	if got != snap {
		t.Error("expected cache to return the identical snapshot")
	}

	// Key is case-insensitive in the wallet address.
	if _, found := cache.Get("0xabc0000000000000000000000000000000000001", 1); !found {
		t.Error("expected hit with lower-cased wallet address")
	}
}

func TestSnapshotCacheExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	cache := NewSnapshotCache(300*time.Second, clock)

	cache.Put(testWallet, 1, testSnapshot(1))

	if _, found := cache.Get(testWallet, 1); !found {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(301 * time.Second)
	if _, found := cache.Get(testWallet, 1); found {
		t.Fatal("expected miss after TTL elapsed")
	}

	stats := cache.Stats()
	if stats.Entries != 0 {
		t.Errorf("expected expired entry to be evicted, got %d entries", stats.Entries)
	}
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	cache := NewSnapshotCache(5*time.Minute, nil)

	cache.Put(testWallet, 1, testSnapshot(1))
	cache.Put(testWallet, 137, testSnapshot(2))
	cache.Put("0xdef0000000000000000000000000000000000002", 1, testSnapshot(3))

	removed := cache.Invalidate(testWallet)
	if removed != 2 {
		t.Fatalf("expected 2 entries removed across chains, got %d", removed)
	}

	// Second invalidation is a no-op, not an error.
	if removed := cache.Invalidate(testWallet); removed != 0 {
		t.Errorf("expected no-op on repeated invalidation, got %d", removed)
	}

	if _, found := cache.Get("0xdef0000000000000000000000000000000000002", 1); !found {
		t.Error("expected other wallet's entry to survive invalidation")
	}
}

func TestSnapshotCacheStats(t *testing.T) {
	cache := NewSnapshotCache(300*time.Second, nil)

	cache.Get(testWallet, 1) // miss
	cache.Put(testWallet, 1, testSnapshot(1))
	cache.Get(testWallet, 1) // hit
	cache.Get(testWallet, 1) // hit

	stats := cache.Stats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.Entries != 1 {
		t.Errorf("expected 1 entry, got %d", stats.Entries)
	}
	if stats.TTLSeconds != 300 {
		t.Errorf("expected TTL of 300 seconds, got %v", stats.TTLSeconds)
	}
}
