package utils

import (
	"sync"
	"time"
)

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Value      interface{}
	Expiration time.Time
}

// MemoryCache provides in-memory caching with expiration. Entries do not
// survive a restart; nothing cached here is the source of truth.
type MemoryCache struct {
	items    map[string]*CacheItem
	mu       sync.RWMutex
	maxItems int
}

// NewMemoryCache creates a new memory cache. maxItems of 0 means unbounded.
func NewMemoryCache(maxItems int) *MemoryCache {
	cache := &MemoryCache{
		items:    make(map[string]*CacheItem),
		maxItems: maxItems,
	}

	// Start cleanup goroutine
	go cache.cleanupLoop()

	return cache
}

// Set stores a value in cache with expiration
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxItems > 0 && len(c.items) >= c.maxItems {
		if _, exists := c.items[key]; !exists {
			c.evictOldest()
		}
	}

	c.items[key] = &CacheItem{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Now().After(item.Expiration) {
		c.Delete(key)
		return nil, false
	}

	return item.Value, true
}

// Delete removes an item from cache
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes all items from cache
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*CacheItem)
	c.mu.Unlock()
}

// Size returns the number of items in cache
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Has checks if a key exists in cache
func (c *MemoryCache) Has(key string) bool {
	_, exists := c.Get(key)
	return exists
}

// Keys returns all keys in cache
func (c *MemoryCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}

	return keys
}

// evictOldest drops the entry closest to expiry. Must be called with the
// write lock held.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.Expiration.Before(oldest) {
			oldestKey = key
			oldest = item.Expiration
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// cleanupLoop periodically removes expired items
func (c *MemoryCache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes expired items
func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.Expiration) {
			delete(c.items, key)
		}
	}
}
