package loader

import (
	"testing"
	"time"

	"github.com/hyperjump/midashi/internal/doctree"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(2)
	if v, ok := c.Get("a", ""); ok || v != nil {
		t.Fatal("expected miss")
	}
	a := doctree.NewElement("a")
	c.Set("a", "v1", a, 0)
	if got, ok := c.Get("a", "v1"); !ok || got != a {
		t.Errorf("Get: got %v, %v", got, ok)
	}
	c.Set("b", "", doctree.NewElement("b"), 0)
	c.Set("c", "", doctree.NewElement("c"), 0) // evicts a
	if _, ok := c.Get("a", "v1"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b", ""); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c", ""); !ok {
		t.Error("expected c to be present")
	}
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	c := NewCache(2)
	c.Set("a", "", doctree.NewElement("a"), 0)
	c.Set("b", "", doctree.NewElement("b"), 0)
	c.Get("a", "")
	c.Set("c", "", doctree.NewElement("c"), 0) // evicts b
	if _, ok := c.Get("a", ""); !ok {
		t.Error("expected a to remain")
	}
	if _, ok := c.Get("b", ""); ok {
		t.Error("expected b to be evicted")
	}
}

func TestCache_VersionMismatchMisses(t *testing.T) {
	c := NewCache(4)
	c.Set("a", "v1", doctree.NewElement("a"), 0)
	if _, ok := c.Get("a", "v2"); ok {
		t.Error("expected miss on new version")
	}
	if c.Len() != 0 {
		t.Errorf("stale entry kept: len = %d", c.Len())
	}
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(4)
	c.now = func() time.Time { return now }
	c.Set("a", "", doctree.NewElement("a"), time.Minute)

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("a", ""); !ok {
		t.Error("expected hit before expiry")
	}
	now = now.Add(time.Minute)
	if _, ok := c.Get("a", ""); ok {
		t.Error("expected miss after expiry")
	}
}

func TestCache_InvalidateAndPurge(t *testing.T) {
	c := NewCache(4)
	c.Set("a", "", doctree.NewElement("a"), 0)
	c.Set("b", "", doctree.NewElement("b"), 0)
	c.Invalidate("a")
	c.Invalidate("missing")
	if _, ok := c.Get("a", ""); ok {
		t.Error("expected a invalidated")
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("len after purge = %d", c.Len())
	}
	c.Set("a", "", doctree.NewElement("a"), 0)
	if _, ok := c.Get("a", ""); !ok {
		t.Error("cache unusable after purge")
	}
}

func TestCache_ZeroCapacityDisabled(t *testing.T) {
	c := NewCache(0)
	c.Set("a", "", doctree.NewElement("a"), 0)
	if _, ok := c.Get("a", ""); ok {
		t.Error("expected no caching with zero capacity")
	}
}
