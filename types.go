package lokal

import (
	"context"
	"time"
)

// DefaultCategory is assigned to translations saved without a category.
const DefaultCategory = "general"

// Translation is the persisted localization record, identified by its
// (Key, Locale) pair. ID is a generated surrogate and is never used for
// lookups.
type Translation struct {
	ID          string       // Surrogate identifier (UUID), minted on first save
	Key         string       // Lookup key, e.g. "checkout.title"
	Locale      string       // Locale short code, e.g. "ky"
	Value       string       // Translated text, may contain {{name}} placeholders
	Category    string       // Grouping for bulk queries (default: "general")
	Description string       // Optional translator-facing note
	Variables   []string     // Placeholder names extracted from Value; recomputed on every save
	PluralForms *PluralForms // Optional per-category plural variants
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PluralForms holds one variant per grammatical plural category.
// Other is the universal fallback and must always be set.
type PluralForms struct {
	Zero  string `json:"zero,omitempty"`
	One   string `json:"one,omitempty"`
	Two   string `json:"two,omitempty"`
	Few   string `json:"few,omitempty"`
	Many  string `json:"many,omitempty"`
	Other string `json:"other"`
}

// Form returns the variant for a plural category, or the Other variant
// when the category has no text.
func (p *PluralForms) Form(form PluralForm) string {
	var s string
	switch form {
	case PluralZero:
		s = p.Zero
	case PluralOne:
		s = p.One
	case PluralTwo:
		s = p.Two
	case PluralFew:
		s = p.Few
	case PluralMany:
		s = p.Many
	case PluralOther:
		s = p.Other
	}
	if s == "" {
		return p.Other
	}
	return s
}

// Resolution is the result of a single translation lookup.
type Resolution struct {
	Key    string
	Locale string
	Value  string
	Cached bool // Whether the value was served from the cache layer
}

// BulkResolution is the result of a multi-key translation lookup.
type BulkResolution struct {
	Locale       string
	Translations map[string]string // Every requested key maps to a value (or to itself)
	Missing      []string          // Requested keys with no translation anywhere
	Cached       bool
}

// ImportReport summarizes a bulk import. Partial success is a normal,
// non-exceptional outcome.
type ImportReport struct {
	Imported int
	Skipped  int
	Errors   []string // Per-key validation failures, formatted "<key>: <message>"
}

// Store is the persistence contract the engine resolves against.
//
// Read methods degrade: a store outage yields empty results, never an
// error that would break rendering. Write methods propagate failures,
// since silently losing a write is worse than an explicit signal.
type Store interface {
	// Get fetches a single translation. Returns (nil, nil) when absent.
	Get(ctx context.Context, key, locale string) (*Translation, error)

	// GetMany fetches up to len(keys) translations, splitting the request
	// into store-sized chunks. Failed chunks are logged and omitted.
	GetMany(ctx context.Context, keys []string, locale string) (map[string]Translation, error)

	// Put upserts a single translation, refreshing UpdatedAt server-side.
	Put(ctx context.Context, t Translation) (Translation, error)

	// PutMany writes translations in store-sized chunks, aborting on the
	// first failed chunk. It reports how many items were written.
	PutMany(ctx context.Context, ts []Translation) (int, error)

	// Delete removes a translation. Deleting an absent key is not an error.
	Delete(ctx context.Context, key, locale string) error

	// QueryByLocale returns all translations for a locale, optionally
	// filtered by category. Ordered by category then key.
	QueryByLocale(ctx context.Context, locale, category string) ([]Translation, error)

	// QueryByCategory returns translations in a category, optionally
	// filtered by locale, up to limit (0 = no limit).
	QueryByCategory(ctx context.Context, category, locale string, limit int) ([]Translation, error)

	// Search performs a full-scan substring match against keys and values.
	// This is the slow path and is never used by resolution.
	Search(ctx context.Context, query, locale, category string, limit int) ([]Translation, error)

	// ScanAll returns every stored translation. Administrative use only.
	ScanAll(ctx context.Context) ([]Translation, error)
}

// Cache is the engine-facing contract of the cache layer. Entries are
// flattened key→value projections per locale (and optionally category).
type Cache interface {
	// Get returns the fresh entry for (locale, category), or (nil, false)
	// when the entry is absent or stale.
	Get(ctx context.Context, locale, category string) (map[string]string, bool)

	// Put stores a fresh entry for (locale, category).
	Put(ctx context.Context, locale, category string, values map[string]string) error

	// Invalidate removes every entry for the locale, across categories.
	Invalidate(ctx context.Context, locale string) error
}
