package cache

import (
	"testing"
	"time"
)

func TestKey_StableAndNamespaced(t *testing.T) {
	a := Key("article", "Apple company")
	b := Key("article", "Apple company")
	if a != b {
		t.Error("Expected identical keys for identical topics")
	}

	if Key("index", "Apple company") == a {
		t.Error("Expected different kinds to produce different keys")
	}
	if Key("article", "Banana company") == a {
		t.Error("Expected different topics to produce different keys")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", []byte("article text"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "article text" {
		t.Errorf("Expected hit with stored value, got found=%v val=%q", found, val)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set(Key("article", "T"), []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get(Key("article", "T"))
	if !found || string(val) != "payload" {
		t.Errorf("Expected hit, got found=%v val=%q", found, val)
	}

	// An already-expired entry must read as a miss.
	if err := c.Set("expired", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("expired"); found {
		t.Error("Expected miss for expired entry")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()

	// Seed disk directly, then read through a fresh layered cache.
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Seed disk: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := layered.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("Expected disk hit through layered cache, got found=%v", found)
	}

	// Must now be served from memory as well.
	if _, found := layered.memory.Get("k"); !found {
		t.Error("Expected value promoted to memory layer")
	}
}

func TestForConfig(t *testing.T) {
	if c := ForConfig(false, "", time.Minute, time.Minute); c != nil {
		t.Error("Expected nil cache when disabled")
	}
	if _, ok := ForConfig(true, "", time.Minute, time.Minute).(*MemoryCache); !ok {
		t.Error("Expected memory cache without a disk dir")
	}
	if _, ok := ForConfig(true, t.TempDir(), time.Minute, time.Minute).(*LayeredCache); !ok {
		t.Error("Expected layered cache with a disk dir")
	}
}
