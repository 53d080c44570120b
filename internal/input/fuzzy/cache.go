package fuzzy

import (
	"container/list"
	"sync"
)

// Cache provides LRU memoization of segmentations.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	maxSize int
	items   map[cacheKey]*list.Element
	lru     *list.List
}

type cacheKey struct {
	name   string
	filter string
}

// cacheEntry holds a cached segmentation.
type cacheEntry struct {
	key      cacheKey
	segments Segmentation
}

// NewCache creates a new LRU cache with the given maximum size.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		maxSize: maxSize,
		items:   make(map[cacheKey]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves the cached segmentation of name for filter.
// Returns nil if not found.
func (c *Cache) Get(name, filter string) Segmentation {
	key := cacheKey{name: name, filter: filter}

	// First check with read lock for cache misses (common case)
	c.mu.RLock()
	_, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	// Cache hit - need write lock to update LRU order
	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check in case entry was evicted between locks
	elem, ok := c.items[key]
	if !ok {
		return nil
	}

	c.lru.MoveToFront(elem)

	entry := elem.Value.(*cacheEntry) //nolint:errcheck // list only contains *cacheEntry
	return entry.segments.Clone()
}

// Set stores the segmentation of name for filter.
func (c *Cache) Set(name, filter string, segments Segmentation) {
	key := cacheKey{name: name, filter: filter}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry) //nolint:errcheck // list only contains *cacheEntry
		entry.segments = segments.Clone()
		return
	}

	if c.lru.Len() >= c.maxSize {
		c.evictOldest()
	}

	entry := &cacheEntry{
		key:      key,
		segments: segments.Clone(),
	}
	c.items[key] = c.lru.PushFront(entry)
}

// Delete removes a specific entry from the cache.
func (c *Cache) Delete(name, filter string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[cacheKey{name: name, filter: filter}]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[cacheKey]*list.Element)
	c.lru.Init()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *Cache) evictOldest() {
	if elem := c.lru.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// removeElement removes an element from the cache.
// Must be called with lock held.
func (c *Cache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	entry := elem.Value.(*cacheEntry) //nolint:errcheck // list only contains *cacheEntry
	delete(c.items, entry.key)
}
