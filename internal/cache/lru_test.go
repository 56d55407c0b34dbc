package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheBasic(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}

	// "b" is now least recently used; adding "c" evicts it.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("k", "fresh")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry served as fresh")
	}

	// The expired entry is still reachable as stale.
	v, ok, stale := c.GetStale("k")
	if !ok || !stale || v != "fresh" {
		t.Fatalf("GetStale = %q, %v, %v; want fresh, true, true", v, ok, stale)
	}
}

func TestLRUCacheGetStaleFresh(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	c.Set("k", "v")

	v, ok, stale := c.GetStale("k")
	if !ok || stale || v != "v" {
		t.Fatalf("GetStale = %q, %v, %v; want v, true, false", v, ok, stale)
	}

	if _, ok, _ := c.GetStale("missing"); ok {
		t.Fatalf("GetStale reported a missing key as present")
	}
}

// Expired entries must survive indefinitely until capacity pushes them
// out; the degraded-store read path depends on it.
func TestLRUCacheStaleSurvivesUntilCapacityEviction(t *testing.T) {
	c := NewLRUCache[int](3, 10*time.Millisecond)
	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)

	for round := 0; round < 10; round++ {
		if v, ok, stale := c.GetStale("k"); !ok || !stale || v != 42 {
			t.Fatalf("round %d: GetStale = %d, %v, %v; want 42, true, true", round, v, ok, stale)
		}
	}

	// Filling the cache past capacity is the only thing that drops it.
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if _, ok, _ := c.GetStale("k"); ok {
		t.Fatalf("stale entry survived capacity eviction")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("deleted key still present")
	}
}
