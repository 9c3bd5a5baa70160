package cache

import (
	"testing"
	"time"
)

func TestGetSetInvalidate(t *testing.T) {
	c := NewTTLCache[int](4, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestExpiry(t *testing.T) {
	c := NewTTLCache[string](4, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expiry read", c.Len())
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	c := NewTTLCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	// "a" was inserted first, so it is closest to expiry and gets evicted.
	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected newest entry to survive eviction")
	}
}

func TestFlush(t *testing.T) {
	c := NewTTLCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Flush, want 0", c.Len())
	}
}
