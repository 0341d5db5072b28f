package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_ImplementsStore(_ *testing.T) {
	var _ Store = (*LRU)(nil)
}

func TestLRU_SetAndGet(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Set("key1", "insight one")
	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "insight one" {
		t.Errorf("expected insight one, got %q", got)
	}
}

func TestLRU_Miss(t *testing.T) {
	c := NewLRU(10, time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("expected cache miss")
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU(10, 10*time.Millisecond)
	c.Set("key1", "value")

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("key1"); ok {
		t.Error("expected cache miss after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestLRU_CapacityNeverExceeded(t *testing.T) {
	for _, capacity := range []int{1, 2, 5, 16} {
		c := NewLRU(capacity, time.Minute)
		for i := 0; i < capacity+1; i++ {
			c.Set(fmt.Sprintf("k%d", i), "v")
			if c.Len() > capacity {
				t.Fatalf("capacity %d exceeded: len=%d", capacity, c.Len())
			}
		}
		// Exactly the oldest key is gone.
		if _, ok := c.Get("k0"); ok {
			t.Errorf("capacity %d: expected k0 to be evicted", capacity)
		}
		for i := 1; i <= capacity; i++ {
			if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
				t.Errorf("capacity %d: expected k%d to be present", capacity, i)
			}
		}
	}
}

func TestLRU_AccessOrder(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("a", "a")
	c.Set("b", "b")

	c.Get("a") // "b" is now least recently used

	c.Set("c", "c")

	if _, ok := c.Get("a"); !ok {
		t.Error("expected 'a' to be present (recently accessed)")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected 'b' to be evicted (LRU)")
	}
}

func TestLRU_Update(t *testing.T) {
	c := NewLRU(10, time.Minute)
	c.Set("key1", "old")
	c.Set("key1", "new")

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "new" {
		t.Errorf("expected new, got %q", got)
	}
	if c.Len() != 1 {
		t.Errorf("expected len 1, got %d", c.Len())
	}
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU(10, time.Minute)
	c.Set("a", "a")
	c.Set("b", "b")
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected len 0 after clear, got %d", c.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU(5, time.Minute)
	c.Set("a", "a")
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", s.Hits)
	}
	if s.Misses != 2 {
		t.Errorf("expected 2 misses, got %d", s.Misses)
	}
	if s.HitRate != 50 {
		t.Errorf("expected 50%% hit rate, got %g", s.HitRate)
	}
	if s.Size != 1 || s.Capacity != 5 {
		t.Errorf("unexpected size/capacity: %d/%d", s.Size, s.Capacity)
	}
}

func TestLRU_Concurrent(_ *testing.T) {
	c := NewLRU(100, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			c.Set(key, key)
			c.Get(key)
			c.Stats()
		}(i)
	}
	wg.Wait()
}
