package summary

import "sync"

// Cache holds the summary table for long-lived readers such as the dashboard.
// It computes on first use and again after Invalidate.
type Cache struct {
	load func() ([]Row, error)

	mu     sync.RWMutex
	rows   []Row
	loaded bool
}

func NewCache(load func() ([]Row, error)) *Cache {
	return &Cache{load: load}
}

// Get returns the cached rows, computing them if needed. A failed computation
// is not cached.
func (c *Cache) Get() ([]Row, error) {
	c.mu.RLock()
	if c.loaded {
		rows := c.rows
		c.mu.RUnlock()
		return rows, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have filled the cache while we waited for the lock
	if c.loaded {
		return c.rows, nil
	}

	rows, err := c.load()
	if err != nil {
		return nil, err
	}

	c.rows = rows
	c.loaded = true

	return rows, nil
}

// Invalidate drops the cached rows; the next Get recomputes them.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = nil
	c.loaded = false
}
