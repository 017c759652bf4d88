package cache

import (
	"testing"
	"time"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	// a was touched, so b is the oldest
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRU_Expiry(t *testing.T) {
	c := NewLRU[string](10, time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}

	c.Set("x", "1")
	c.Set("y", "2")
	now = now.Add(2 * time.Minute)
	if n := c.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after sweep", c.Len())
	}
}

func TestLRU_DeletePrefix(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("hh-1:2024-03", 1)
	c.Set("hh-1:2024-04", 2)
	c.Set("hh-2:2024-03", 3)

	if n := c.DeletePrefix("hh-1:"); n != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", n)
	}
	if _, ok := c.Get("hh-2:2024-03"); !ok {
		t.Error("other household entry removed")
	}
}

func TestJanitor_StopTwice(t *testing.T) {
	j := NewJanitor(nil)
	j.Register(NewLRU[int](1, time.Millisecond))
	j.Start(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	j.Stop()
	j.Stop()
}
