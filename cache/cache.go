// Package cache provides the two-tier translation cache: a process-local
// in-memory tier and a persisted snapshot tier for cross-process reuse.
package cache

import (
	"context"
	"time"
)

// LocaleCache is the interface for locale-keyed translation caching.
// Entries are flattened key→value maps, keyed by locale alone or by
// locale plus category — materially different entries that are never
// merged.
type LocaleCache interface {
	// Get returns the fresh entry for (locale, category), or (nil, false)
	// when the entry is absent or stale.
	Get(ctx context.Context, locale, category string) (map[string]string, bool)

	// Put stores a fresh entry for (locale, category).
	Put(ctx context.Context, locale, category string, values map[string]string) error

	// Invalidate removes every entry for the locale, across categories.
	Invalidate(ctx context.Context, locale string) error
}

// Snapshot is a persisted cache entry, judged stale the same way as an
// in-memory one: now - LastUpdated > TTL.
type Snapshot struct {
	Locale      string            `json:"locale"`
	Category    string            `json:"category,omitempty"`
	Values      map[string]string `json:"values"`
	LastUpdated time.Time         `json:"last_updated"`
	TTL         time.Duration     `json:"ttl"`
}

// SnapshotStore persists cache snapshots for reuse across process
// restarts. Implementations exist for the primary store (one row per
// locale) and for redis.
type SnapshotStore interface {
	// LoadSnapshot returns the stored snapshot for (locale, category),
	// or (nil, nil) when none exists.
	LoadSnapshot(ctx context.Context, locale, category string) (*Snapshot, error)

	// SaveSnapshot writes a snapshot, replacing any previous one for its
	// (locale, category).
	SaveSnapshot(ctx context.Context, snap Snapshot) error

	// DeleteSnapshots removes every snapshot for the locale, across
	// categories.
	DeleteSnapshots(ctx context.Context, locale string) error
}
