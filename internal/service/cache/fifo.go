package cache

import "sync"

// FIFOCache is a bounded key/value cache that evicts the oldest inserted
// entry once the limit is exceeded. Insertion order, not access order,
// decides eviction, so a hot key still ages out.
type FIFOCache struct {
	mu    sync.Mutex
	limit int
	m     map[string]any
	order []string
}

func NewFIFOCache(limit int) *FIFOCache {
	if limit <= 0 {
		limit = 1
	}
	return &FIFOCache{limit: limit, m: make(map[string]any)}
}

func (c *FIFOCache) Get(key string) (any, bool) {
	c.mu.Lock()
	v, ok := c.m[key]
	c.mu.Unlock()
	return v, ok
}

// Set stores key. Re-setting an existing key keeps its original position in
// the eviction order.
func (c *FIFOCache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[key]; !ok {
		c.order = append(c.order, key)
	}
	c.m[key] = v
	for len(c.order) > c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.m, oldest)
	}
}

func (c *FIFOCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *FIFOCache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]any)
	c.order = nil
	c.mu.Unlock()
}
