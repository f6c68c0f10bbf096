package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a byte-bounded least-recently-used cache of values by key. An
// entry costs len(key)+len(value) bytes.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[string]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   string
	value []byte
}

func (e *entry) cost() int64 { return int64(len(e.key) + len(e.value)) }

// NewLRU creates a cache holding at most capacity bytes.
func NewLRU(capacity int64) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached value of key. The slice must be treated as
// read-only.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches value under key. The cache retains value; callers must not
// modify it afterwards. Entries larger than the capacity are not cached.
func (c *LRU) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		e := ent.Value.(*entry)
		c.size += int64(len(value)) - int64(len(e.value))
		e.value = value
		c.evictList.MoveToFront(ent)
		c.evict()
		return
	}

	e := &entry{key: key, value: value}
	if e.cost() > c.capacity {
		return
	}
	for c.size+e.cost() > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}
	c.items[key] = c.evictList.PushFront(e)
	c.size += e.cost()
}

// Remove drops key from the cache.
func (c *LRU) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}
}

// Purge drops every entry. Hit and miss counters are kept.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.evictList.Init()
	c.size = 0
}

func (c *LRU) evict() {
	for c.size > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			return
		}
		c.removeElement(back)
	}
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
	c.size -= kv.cost()
}

// Stats returns the hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}
