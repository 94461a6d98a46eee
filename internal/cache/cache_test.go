// file: internal/cache/cache_test.go
// version: 1.2.0
// guid: 3a7c9e1b-5d2f-4860-b4a6-8f0d3c5e9a27

package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected hit with %q, got %q (ok=%v)", "v", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](time.Minute)
	c.SetWithTTL("k", 42, 10*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be dropped, have %d", c.Len())
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, have %d entries", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after InvalidateAll")
	}

	c.Set("a", 3)
	if got, ok := c.Get("a"); !ok || got != 3 {
		t.Fatalf("expected cache to accept new entries after reset, got %d (ok=%v)", got, ok)
	}
}
