package recipe

import (
	"fmt"
	"sync"
	"time"
)

type cacheEntry struct {
	recipe    Recipe
	expiresAt time.Time
}

// cache is a small in-process TTL cache for generated recipes, keyed by
// owner and normalized intent. When full, the entry closest to expiry is
// evicted.
type cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

func newCache(ttl time.Duration, max int) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

func cacheKey(ownerID string, intent Intent) string {
	return fmt.Sprintf("%s|%s|%s|%s", ownerID, intent.DishName, intent.Preferences, intent.Mode)
}

// get returns the cached recipe for key, ignoring expired entries. The
// serving count is intentionally not part of the key; callers rescale.
func (c *cache) get(key string) (Recipe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Recipe{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return Recipe{}, false
	}
	return e.recipe, true
}

func (c *cache) put(key string, r Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.max {
		if _, exists := c.entries[key]; !exists {
			c.evictOldest()
		}
	}
	c.entries[key] = cacheEntry{recipe: r, expiresAt: c.now().Add(c.ttl)}
}

func (c *cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey = k
			oldest = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
