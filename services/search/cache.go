package search

import "cinescope/models"

// fifoCache is a bounded cache over normalized queries. Eviction is strictly
// by insertion order: a hit does not refresh an entry's position, so the
// oldest-inserted key always goes first. Not safe for concurrent use; the
// owning Service serialises access.
type fifoCache struct {
	capacity int
	order    []string
	entries  map[string][]models.MediaItem
}

func newFIFOCache(capacity int) *fifoCache {
	return &fifoCache{
		capacity: capacity,
		entries:  make(map[string][]models.MediaItem, capacity),
	}
}

// Get returns the cached results for key, if present.
func (c *fifoCache) Get(key string) ([]models.MediaItem, bool) {
	items, ok := c.entries[key]
	return items, ok
}

// Put stores results under key, evicting the oldest-inserted entry when the
// cache is full. Re-putting an existing key replaces its value but keeps its
// original position.
func (c *fifoCache) Put(key string, items []models.MediaItem) {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = items
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = items
}

// Len reports the number of cached queries.
func (c *fifoCache) Len() int { return len(c.order) }
