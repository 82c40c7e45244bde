package api

import (
	"sync"
	"time"
)

// ResponseCache memoizes serialized chat responses for repeated
// conversational messages, keyed by (message, todo snapshot). Bounded by
// entry count; the oldest insertion is evicted first. Expired entries are
// ignored on read; a repeated Put keeps the original insertion slot.
type ResponseCache struct {
	ttl     time.Duration
	maxSize int

	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string
	now     func() time.Time
}

type cacheEntry struct {
	payload  []byte
	storedAt time.Time
}

// NewResponseCache creates a cache holding at most maxSize entries for ttl.
func NewResponseCache(ttl time.Duration, maxSize int) *ResponseCache {
	return &ResponseCache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached payload for key if it has not expired. The payload
// is returned as stored, byte for byte.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(ent.storedAt) >= c.ttl {
		return nil, false
	}
	return ent.payload, true
}

// Put stores payload under key, evicting the oldest entries past maxSize.
func (c *ResponseCache) Put(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{payload: payload, storedAt: c.now()}

	for len(c.entries) > c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len reports the number of stored entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
