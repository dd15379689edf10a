package cache

import (
	"context"

	"go.uber.org/zap"
)

// TieredCache layers the in-memory tier over a persisted snapshot store.
// Reads consult memory first, then try to hydrate from the snapshot; a
// stale or absent snapshot is reported as a miss so the engine rebuilds
// from the primary store. Writes land in both tiers; invalidation clears
// both.
//
// Snapshot failures are never fatal: a cache that cannot persist is
// degraded, not broken, so snapshot errors on the read and write paths
// are logged and swallowed. Invalidation is the exception — failing to
// clear a persisted snapshot would let another process serve stale data,
// so that error is returned.
type TieredCache struct {
	memory    *MemoryCache
	snapshots SnapshotStore
	logger    *zap.Logger
}

// TieredOption is a functional option for configuring the TieredCache.
type TieredOption func(*TieredCache)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) TieredOption {
	return func(c *TieredCache) {
		c.logger = logger
	}
}

// NewTieredCache creates a two-tier cache. A nil snapshot store yields a
// memory-only cache with the same interface.
func NewTieredCache(memory *MemoryCache, snapshots SnapshotStore, opts ...TieredOption) *TieredCache {
	c := &TieredCache{
		memory:    memory,
		snapshots: snapshots,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the fresh entry for (locale, category), hydrating the
// memory tier from the persisted snapshot on a local miss.
func (c *TieredCache) Get(ctx context.Context, locale, category string) (map[string]string, bool) {
	if values, ok := c.memory.Get(ctx, locale, category); ok {
		return values, true
	}

	if c.snapshots == nil {
		return nil, false
	}

	snap, err := c.snapshots.LoadSnapshot(ctx, locale, category)
	if err != nil {
		c.logger.Warn("snapshot load failed",
			zap.String("locale", locale),
			zap.String("category", category),
			zap.Error(err))
		return nil, false
	}
	if snap == nil {
		return nil, false
	}

	// Staleness is judged against the snapshot's own timestamp, under
	// the same TTL as the memory tier.
	if c.memory.now().Sub(snap.LastUpdated) > c.memory.ttl {
		return nil, false
	}

	c.memory.putAt(locale, category, snap.Values, snap.LastUpdated)
	return c.memory.Get(ctx, locale, category)
}

// Put stores a fresh entry in the memory tier and mirrors it to the
// snapshot store for cross-process reuse.
func (c *TieredCache) Put(ctx context.Context, locale, category string, values map[string]string) error {
	if err := c.memory.Put(ctx, locale, category, values); err != nil {
		return err
	}

	if c.snapshots == nil {
		return nil
	}

	snap := Snapshot{
		Locale:      locale,
		Category:    category,
		Values:      values,
		LastUpdated: c.memory.now(),
		TTL:         c.memory.ttl,
	}
	if err := c.snapshots.SaveSnapshot(ctx, snap); err != nil {
		c.logger.Warn("snapshot save failed",
			zap.String("locale", locale),
			zap.String("category", category),
			zap.Error(err))
	}
	return nil
}

// Invalidate removes the locale's entries from both tiers.
func (c *TieredCache) Invalidate(ctx context.Context, locale string) error {
	if err := c.memory.Invalidate(ctx, locale); err != nil {
		return err
	}
	if c.snapshots == nil {
		return nil
	}
	return c.snapshots.DeleteSnapshots(ctx, locale)
}

// Verify TieredCache implements LocaleCache
var _ LocaleCache = (*TieredCache)(nil)
