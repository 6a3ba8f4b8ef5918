package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry      *SpeechEntry
	expiration int64
}

func (i memoryItem) expired() bool {
	if i.expiration == 0 {
		return false
	}
	return nowFunc().UnixNano() > i.expiration
}

// MemoryCache is a thread-safe in-memory speech cache with expiration
type MemoryCache struct {
	items    map[string]memoryItem
	mu       sync.RWMutex
	ttl      time.Duration
	maxItems int
}

// NewMemoryCache creates an in-process cache bounded by maxItems
func NewMemoryCache(ttl time.Duration, maxItems int) *MemoryCache {
	c := &MemoryCache{
		items:    make(map[string]memoryItem),
		ttl:      ttl,
		maxItems: maxItems,
	}

	if ttl > 0 {
		go c.startCleanupTimer()
	}

	return c
}

// Get returns a cached entry if present and not expired
func (c *MemoryCache) Get(_ context.Context, key string) (*SpeechEntry, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found || item.expired() {
		return nil, false
	}
	return item.entry, true
}

// Set stores an entry, evicting an arbitrary item when the cache is full
func (c *MemoryCache) Set(_ context.Context, key string, entry *SpeechEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxItems > 0 && len(c.items) >= c.maxItems {
		for k := range c.items {
			delete(c.items, k)
			break
		}
	}

	var expiration int64
	if c.ttl > 0 {
		expiration = nowFunc().Add(c.ttl).UnixNano()
	}

	c.items[key] = memoryItem{entry: entry, expiration: expiration}
}

func (c *MemoryCache) startCleanupTimer() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for k, item := range c.items {
			if item.expired() {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
