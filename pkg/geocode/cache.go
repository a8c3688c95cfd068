package geocode

import (
	"strings"
	"sync"
	"time"
)

// cache is a TTL map keyed by the normalized query string. Entries are
// evicted lazily on read.
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	results []Result
	expires time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func (c *cache) get(query string) ([]Result, bool) {
	key := normalizeQuery(query)
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.results, true
}

func (c *cache) set(query string, results []Result) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[normalizeQuery(query)] = cacheEntry{
		results: results,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}
