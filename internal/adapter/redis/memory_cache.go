package redis

import (
	"container/list"
	"sync"
	"time"

	"github.com/pscheid92/binp/internal/domain"
)

// memoryCache is the L1 layer: a size-bounded LRU whose entries also expire.
type memoryCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type memoryCacheEntry struct {
	id        string
	snippet   domain.Snippet
	expiresAt time.Time
}

func newMemoryCache(capacity int) *memoryCache {
	return &memoryCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *memoryCache) get(id string, now time.Time) (domain.Snippet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return domain.Snippet{}, false
	}
	entry := el.Value.(*memoryCacheEntry)
	if !now.Before(entry.expiresAt) {
		c.removeElement(el)
		return domain.Snippet{}, false
	}
	c.order.MoveToFront(el)
	return entry.snippet, true
}

func (c *memoryCache) set(snippet domain.Snippet, expiresAt time.Time) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[snippet.ID]; ok {
		entry := el.Value.(*memoryCacheEntry)
		entry.snippet = snippet
		entry.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.entries[snippet.ID] = c.order.PushFront(&memoryCacheEntry{
		id:        snippet.ID,
		snippet:   snippet,
		expiresAt: expiresAt,
	})
	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
}

func (c *memoryCache) invalidate(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

func (c *memoryCache) evictExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !now.Before(el.Value.(*memoryCacheEntry).expiresAt) {
			c.removeElement(el)
			evicted++
		}
		el = next
	}
	return evicted
}

func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *memoryCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*memoryCacheEntry).id)
}
