package compiler

import (
	"container/list"
	"sync"
)

// defaultCacheSize bounds the number of compiled units kept per compiler.
const defaultCacheSize = 4096

type cacheEntry struct {
	key  string
	unit *Unit
}

// unitCache is a thread-safe LRU of compiled units keyed by Unit.Key.
type unitCache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

func newUnitCache(capacity int) *unitCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &unitCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// get returns the unit for key and marks it most recently used.
func (c *unitCache) get(key string) (*Unit, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	front := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !front {
		// Promote under the write lock; the entry may have been evicted meanwhile.
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()
		if !ok {
			return nil, false
		}
	}
	return el.Value.(*cacheEntry).unit, true
}

// set inserts u, evicting the least recently used entry at capacity.
func (c *unitCache) set(key string, u *Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).unit = u
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		if back := c.ll.Back(); back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*cacheEntry).key)
		}
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, unit: u})
}

func (c *unitCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *unitCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}
