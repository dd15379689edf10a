package lokal

import (
	"context"
	"sort"
)

// Stats is a point-in-time report over all stored translations, computed
// by a full scan. Administrative use only.
type Stats struct {
	Total        int
	PerLocale    map[string]int
	PerCategory  map[string]int
	Completeness map[string]float64 // Percent of the global key set covered per locale
}

// CoverageReport lists, per locale, the keys from the global key union
// that have no translation in that locale.
type CoverageReport struct {
	Keys            []string            // The global distinct key union, sorted
	MissingByLocale map[string][]string // Sorted missing keys per supported locale
}

// Stats scans the store and computes totals, per-locale and per-category
// counts, and per-locale completeness over the union of distinct keys.
// Every supported locale appears in Completeness, including ones with no
// entries at all.
func (r *Resolver) Stats(ctx context.Context) (*Stats, error) {
	ts, err := r.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:        len(ts),
		PerLocale:    make(map[string]int),
		PerCategory:  make(map[string]int),
		Completeness: make(map[string]float64),
	}

	union := make(map[string]bool)
	keysByLocale := make(map[string]map[string]bool)

	for _, t := range ts {
		stats.PerLocale[t.Locale]++
		stats.PerCategory[t.Category]++
		union[t.Key] = true
		if keysByLocale[t.Locale] == nil {
			keysByLocale[t.Locale] = make(map[string]bool)
		}
		keysByLocale[t.Locale][t.Key] = true
	}

	for _, locale := range statLocales(r.registry, keysByLocale) {
		if len(union) == 0 {
			stats.Completeness[locale] = 0
			continue
		}
		stats.Completeness[locale] = float64(len(keysByLocale[locale])) / float64(len(union)) * 100
	}

	return stats, nil
}

// Coverage scans the store and reports which keys each supported locale
// is missing relative to the union of all distinct keys.
func (r *Resolver) Coverage(ctx context.Context) (*CoverageReport, error) {
	ts, err := r.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	union := make(map[string]bool)
	keysByLocale := make(map[string]map[string]bool)
	for _, t := range ts {
		union[t.Key] = true
		if keysByLocale[t.Locale] == nil {
			keysByLocale[t.Locale] = make(map[string]bool)
		}
		keysByLocale[t.Locale][t.Key] = true
	}

	report := &CoverageReport{
		MissingByLocale: make(map[string][]string),
	}
	for key := range union {
		report.Keys = append(report.Keys, key)
	}
	sort.Strings(report.Keys)

	for _, locale := range statLocales(r.registry, keysByLocale) {
		missing := make([]string, 0)
		for _, key := range report.Keys {
			if !keysByLocale[locale][key] {
				missing = append(missing, key)
			}
		}
		report.MissingByLocale[locale] = missing
	}

	return report, nil
}

// statLocales merges the registry's supported set with any locales seen
// in the scan, so reports cover both configured and orphaned data.
func statLocales(registry *Registry, seen map[string]map[string]bool) []string {
	set := make(map[string]bool)
	for _, locale := range registry.Locales() {
		set[locale] = true
	}
	for locale := range seen {
		set[locale] = true
	}

	out := make([]string, 0, len(set))
	for locale := range set {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}
