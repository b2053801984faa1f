package cache

import (
	"testing"
	"time"
)

func TestFIFOEvictsOldest(t *testing.T) {
	c := NewFIFOCache(2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("oldest entry must be evicted")
	}
	if v, ok := c.Get("b"); !ok || v.(int) != 2 {
		t.Fatalf("b = %v, %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v.(int) != 3 {
		t.Fatalf("c = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
}

func TestFIFOResetKeepsPosition(t *testing.T) {
	c := NewFIFOCache(2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)
	c.Set("c", 3)

	// "a" kept its original slot, so it is still the oldest.
	if _, ok := c.Get("a"); ok {
		t.Fatalf("re-set key must not be promoted")
	}
	if v, _ := c.Get("b"); v.(int) != 2 {
		t.Fatalf("b = %v", v)
	}
}

func TestFIFOClear(t *testing.T) {
	c := NewFIFOCache(4)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("len = %d after clear", c.Len())
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v.(int) != 3 {
		t.Fatalf("cache unusable after clear: %v, %v", v, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", "v", 10*time.Millisecond)
	if v, ok := c.Get("k"); !ok || v.(string) != "v" {
		t.Fatalf("fresh entry missing: %v, %v", v, ok)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry must not be returned")
	}
}

func TestTTLZeroNeverExpires(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", 1, 0)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("zero TTL entry must persist")
	}
}

func TestTTLBytesRoundTrip(t *testing.T) {
	c := NewTTLCache()
	if err := c.SetBytes("k", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, ok, err := c.GetBytes("k")
	if err != nil || !ok || string(b) != "payload" {
		t.Fatalf("get = %q, %v, %v", b, ok, err)
	}
	if _, ok, _ := c.GetBytes("missing"); ok {
		t.Fatalf("miss reported as hit")
	}
}
