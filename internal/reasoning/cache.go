package reasoning

import (
	"sync"

	"github.com/openpulse/pulse/internal/core"
	"github.com/openpulse/pulse/pkg/textnorm"
)

const defaultCacheSize = 50

// ResponseCache maps a normalized-input fingerprint to the last result
// produced for it. Eviction is strict FIFO by insertion order, not by
// recency of use: re-reading or overwriting an entry does not protect it.
type ResponseCache struct {
	mu       sync.Mutex
	entries  map[string]core.ReasoningResult
	order    []string
	capacity int
}

func NewResponseCache(capacity int) *ResponseCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &ResponseCache{
		entries:  make(map[string]core.ReasoningResult, capacity),
		capacity: capacity,
	}
}

func (c *ResponseCache) Get(input string) (core.ReasoningResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.entries[textnorm.Fingerprint(input)]
	return result, ok
}

func (c *ResponseCache) Set(input string, result core.ReasoningResult) {
	key := textnorm.Fingerprint(input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		// Overwrite keeps the original insertion position.
		c.entries[key] = result
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = result
	c.order = append(c.order, key)
}

func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
