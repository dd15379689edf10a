package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is the cache freshness window when none is configured.
const DefaultTTL = 30 * time.Minute

// memoryEntry holds one locale's flattened values with its timestamp.
type memoryEntry struct {
	values      map[string]string
	lastUpdated time.Time
}

// MemoryCache is the thread-safe in-process cache tier. Staleness is
// computed at read time, so an entry past its TTL is never served.
type MemoryCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// MemoryConfig configures the in-memory tier.
type MemoryConfig struct {
	TTL time.Duration // Freshness window (default: 30 minutes)
}

// NewMemoryCache creates an in-memory cache with the configured TTL.
func NewMemoryCache(cfg MemoryConfig) *MemoryCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// entryKey composes the cache key. A category-scoped entry is distinct
// from the locale-wide one.
func entryKey(locale, category string) string {
	if category == "" {
		return locale
	}
	return locale + "#" + category
}

// Get returns the entry for (locale, category) if present and fresh.
func (c *MemoryCache) Get(ctx context.Context, locale, category string) (map[string]string, bool) {
	key := entryKey(locale, category)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.lastUpdated) > c.ttl {
		// Entry expired - clean it up
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return entry.values, true
}

// Put stores a fresh entry. The values map is copied before the swap so
// a concurrent reader observes either the old entry or the new one in
// full, never a torn state.
func (c *MemoryCache) Put(ctx context.Context, locale, category string, values map[string]string) error {
	c.putAt(locale, category, values, c.now())
	return nil
}

// putAt stores an entry with an explicit timestamp; the tiered cache
// uses it to hydrate from a snapshot without extending its freshness.
func (c *MemoryCache) putAt(locale, category string, values map[string]string, at time.Time) {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entryKey(locale, category)] = memoryEntry{
		values:      copied,
		lastUpdated: at,
	}
}

// Invalidate removes the locale-wide entry and every category-scoped
// entry for the locale.
func (c *MemoryCache) Invalidate(ctx context.Context, locale string) error {
	prefix := locale + "#"

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key == locale || strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len returns the number of entries in the cache (including stale ones).
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

// TTL returns the configured freshness window.
func (c *MemoryCache) TTL() time.Duration {
	return c.ttl
}

// Verify MemoryCache implements LocaleCache
var _ LocaleCache = (*MemoryCache)(nil)
