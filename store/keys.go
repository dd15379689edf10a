// Package store adapts domain translation operations onto a DynamoDB
// table, chunking batch reads and writes against the store's limits.
package store

// Key prefixes for the single-table layout. Translations live under
// TRANSLATION#<key> / LOCALE#<locale>; persisted cache snapshots under
// CACHE#<locale> with a fixed sort prefix.
const (
	translationPrefix = "TRANSLATION#"
	localePrefix      = "LOCALE#"
	cachePrefix       = "CACHE#"
	snapshotSort      = "SNAPSHOT"
)

// Store-imposed batch ceilings. These are properties of DynamoDB, not of
// the domain, so they are carried as configuration with these defaults.
const (
	DefaultBatchWriteMax = 25
	DefaultBatchGetMax   = 100
)

// Limits caps batch operation sizes per round trip.
type Limits struct {
	BatchWriteMax int // Items per batch write (default: 25)
	BatchGetMax   int // Keys per batch get (default: 100)
}

// DefaultLimits returns DynamoDB's batch ceilings.
func DefaultLimits() Limits {
	return Limits{
		BatchWriteMax: DefaultBatchWriteMax,
		BatchGetMax:   DefaultBatchGetMax,
	}
}

// normalized fills unset limits with the defaults.
func (l Limits) normalized() Limits {
	if l.BatchWriteMax <= 0 {
		l.BatchWriteMax = DefaultBatchWriteMax
	}
	if l.BatchGetMax <= 0 {
		l.BatchGetMax = DefaultBatchGetMax
	}
	return l
}

// TranslationPK composes the partition key for a translation key.
func TranslationPK(key string) string {
	return translationPrefix + key
}

// TranslationSK composes the sort key for a locale.
func TranslationSK(locale string) string {
	return localePrefix + locale
}

// SnapshotPK composes the partition key for a locale's cache snapshot.
func SnapshotPK(locale string) string {
	return cachePrefix + locale
}

// SnapshotSK composes the sort key for a snapshot, fixed per locale and
// suffixed for category-scoped entries.
func SnapshotSK(category string) string {
	if category == "" {
		return snapshotSort
	}
	return snapshotSort + "#" + category
}

// CategoryKey composes the secondary-index sort key, ordering a locale's
// translations by category then key.
func CategoryKey(category, key string) string {
	return category + "#" + key
}

// chunk splits items into slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
