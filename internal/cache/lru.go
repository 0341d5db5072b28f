package cache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry struct {
	key       string
	value     string
	createdAt time.Time
	hitCount  int
}

// LRU is a thread-safe in-memory LRU cache with TTL expiration. A single
// mutex guards the ordered list, the key index, and the hit/miss counters
// so no operation interleaves partially.
type LRU struct {
	mu        sync.Mutex
	capacity  int
	ttl       time.Duration
	items     map[string]*list.Element
	evictList *list.List
	hits      int64
	misses    int64
}

// NewLRU creates an LRU cache holding at most capacity entries, each valid
// for ttl after insertion.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	return &LRU{
		capacity:  capacity,
		ttl:       ttl,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached value for key and marks it most-recently-used.
// An entry past its TTL is removed and reported as a miss.
func (c *LRU) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}

	entry := elem.Value.(*lruEntry)
	if time.Since(entry.createdAt) > c.ttl {
		c.removeElement(elem)
		c.misses++
		return "", false
	}

	c.evictList.MoveToFront(elem)
	entry.hitCount++
	c.hits++
	return entry.value, true
}

// Set stores value under key as the most-recently-used entry, evicting the
// least-recently-used entry first when the cache is at capacity.
func (c *LRU) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.evictList.MoveToFront(elem)
		entry := elem.Value.(*lruEntry)
		entry.value = value
		entry.createdAt = time.Now()
		entry.hitCount = 0
		return
	}

	for c.evictList.Len() >= c.capacity {
		c.removeOldest()
	}

	entry := &lruEntry{
		key:       key,
		value:     value,
		createdAt: time.Now(),
	}
	c.items[key] = c.evictList.PushFront(entry)
}

// Len returns the number of entries currently in the cache.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Clear removes all entries. Hit/miss counters are preserved.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.evictList.Init()
}

// Stats returns the current size and hit/miss counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return Stats{
		Size:     c.evictList.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  rate,
	}
}

func (c *LRU) removeOldest() {
	if elem := c.evictList.Back(); elem != nil {
		c.removeElement(elem)
	}
}

func (c *LRU) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	delete(c.items, elem.Value.(*lruEntry).key)
}
