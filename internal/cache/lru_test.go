package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", got, ok)
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)
	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	if c.Size() != 3 {
		t.Fatalf("Size = %d, want 3", c.Size())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("newest entry should remain")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	if cleaned := c.CleanExpired(); cleaned != 1 {
		t.Errorf("CleanExpired = %d, want 1", cleaned)
	}
}

func TestLRUClear(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Size() != 0 {
		t.Errorf("Size after Clear = %d, want 0", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("cleared entry should miss")
	}
	// Cache must remain usable after Clear.
	c.Set("c", 3)
	if got, ok := c.Get("c"); !ok || got != 3 {
		t.Errorf("Get(c) after Clear = %d, %v; want 3, true", got, ok)
	}
}

func TestManagerCleanup(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	c.Set("a", 1)

	deadline := time.After(time.Second)
	for c.Size() != 0 {
		select {
		case <-deadline:
			t.Fatal("manager never cleaned the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
