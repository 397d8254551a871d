package cache

import (
	"context"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLRU(size int, ttl time.Duration) (*LRU[int64, string], *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[int64, string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)
	c.Set(1, "alice")
	c.Set(2, "bob")

	if _, ok := c.Get(1); !ok {
		t.Fatal("1 should be cached")
	}
	c.Set(3, "carol") // evicts 2, the least recently used

	if _, ok := c.Get(2); ok {
		t.Error("2 should have been evicted")
	}
	if v, ok := c.Get(1); !ok || v != "alice" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)
	c.Set(1, "alice")
	c.Set(2, "bob")

	clk.t = clk.t.Add(30 * time.Second)
	c.Set(2, "bobby") // refreshes the ttl

	clk.t = clk.t.Add(45 * time.Second)
	if _, ok := c.Get(1); ok {
		t.Error("1 should have expired")
	}
	if v, ok := c.Get(2); !ok || v != "bobby" {
		t.Errorf("Get(2) = %q, %v", v, ok)
	}

	clk.t = clk.t.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLRUClampsSize(t *testing.T) {
	c, _ := newTestLRU(0, time.Minute)
	c.Set(1, "alice")
	c.Set(2, "bob")
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get(2); !ok {
		t.Error("newest entry should survive")
	}
}

type countingCleaner struct{ calls chan struct{} }

func (c countingCleaner) CleanExpired() int {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return 0
}

func TestStartJanitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cc := countingCleaner{calls: make(chan struct{}, 1)}
	StartJanitor(ctx, time.Millisecond, cc)

	select {
	case <-cc.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor never ran")
	}
}
