package cache

import (
	"sync"
	"time"
)

type entry struct {
	val string
	exp time.Time
}

// MemoryCache is a small TTL cache for rendered views, keyed by render
// parameters.
type MemoryCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
}

func NewMemory(ttl time.Duration) *MemoryCache {
	return &MemoryCache{m: make(map[string]entry), ttl: ttl}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[key]
	if !ok || time.Now().After(e.exp) {
		return "", false
	}
	return e.val, true
}

// Set stores val under key and opportunistically drops entries whose TTL has
// already passed.
func (c *MemoryCache) Set(key, val string) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
	c.m[key] = entry{val: val, exp: now.Add(c.ttl)}
}

// Invalidate drops every entry. Called when the underlying task state
// changes so no stale view outlives a mutation.
func (c *MemoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]entry)
}
