package lokal

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestStats(t *testing.T) {
	// 4 distinct keys total: en has all 4, ru has 2, ky has none.
	store := newMockStore(
		Translation{Key: "a", Locale: "en", Value: "A", Category: "shop"},
		Translation{Key: "b", Locale: "en", Value: "B", Category: "shop"},
		Translation{Key: "c", Locale: "en", Value: "C", Category: "auth"},
		Translation{Key: "d", Locale: "en", Value: "D", Category: "auth"},
		Translation{Key: "a", Locale: "ru", Value: "А", Category: "shop"},
		Translation{Key: "b", Locale: "ru", Value: "Б", Category: "shop"},
	)
	r := NewResolver(store)

	stats, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.Total != 6 {
		t.Errorf("Total = %d, want 6", stats.Total)
	}
	if stats.PerLocale["en"] != 4 || stats.PerLocale["ru"] != 2 {
		t.Errorf("PerLocale = %v", stats.PerLocale)
	}
	if stats.PerCategory["shop"] != 4 || stats.PerCategory["auth"] != 2 {
		t.Errorf("PerCategory = %v", stats.PerCategory)
	}

	if stats.Completeness["en"] != 100.0 {
		t.Errorf("Completeness[en] = %v, want 100.0", stats.Completeness["en"])
	}
	if stats.Completeness["ru"] != 50.0 {
		t.Errorf("Completeness[ru] = %v, want 50.0", stats.Completeness["ru"])
	}
	if stats.Completeness["ky"] != 0.0 {
		t.Errorf("Completeness[ky] = %v, want 0.0", stats.Completeness["ky"])
	}
	if _, ok := stats.Completeness["ky"]; !ok {
		t.Error("every supported locale must appear in Completeness")
	}
}

func TestStats_EmptyStore(t *testing.T) {
	r := NewResolver(newMockStore())

	stats, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Total)
	}
	for locale, pct := range stats.Completeness {
		if pct != 0 {
			t.Errorf("Completeness[%s] = %v, want 0 for an empty store", locale, pct)
		}
	}
	if len(stats.Completeness) != 3 {
		t.Errorf("Completeness has %d locales, want 3", len(stats.Completeness))
	}
}

func TestStats_OrphanedLocaleCounted(t *testing.T) {
	// Data for a locale no longer in the registry still shows up.
	store := newMockStore(Translation{Key: "a", Locale: "kk", Value: "A"})
	r := NewResolver(store)

	stats, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Completeness["kk"] != 100.0 {
		t.Errorf("Completeness[kk] = %v, want 100.0", stats.Completeness["kk"])
	}
}

func TestStats_PropagatesScanError(t *testing.T) {
	store := newMockStore()
	store.readErr = errors.New("scan failed")
	r := NewResolver(store)

	if _, err := r.Stats(context.Background()); err == nil {
		t.Error("Stats should propagate scan failures")
	}
}

func TestCoverage(t *testing.T) {
	store := newMockStore(
		Translation{Key: "a", Locale: "en", Value: "A"},
		Translation{Key: "b", Locale: "en", Value: "B"},
		Translation{Key: "a", Locale: "ru", Value: "А"},
	)
	r := NewResolver(store)

	report, err := r.Coverage(context.Background())
	if err != nil {
		t.Fatalf("Coverage failed: %v", err)
	}

	if !reflect.DeepEqual(report.Keys, []string{"a", "b"}) {
		t.Errorf("Keys = %v, want [a b]", report.Keys)
	}
	if len(report.MissingByLocale["en"]) != 0 {
		t.Errorf("en missing = %v, want empty", report.MissingByLocale["en"])
	}
	if !reflect.DeepEqual(report.MissingByLocale["ru"], []string{"b"}) {
		t.Errorf("ru missing = %v, want [b]", report.MissingByLocale["ru"])
	}
	if !reflect.DeepEqual(report.MissingByLocale["ky"], []string{"a", "b"}) {
		t.Errorf("ky missing = %v, want [a b]", report.MissingByLocale["ky"])
	}
}
