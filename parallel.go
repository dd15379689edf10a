package lokal

import (
	"context"
	"sync"
)

// PreloadResult reports the outcome of warming one locale.
type PreloadResult struct {
	Locale string
	Loaded int
	Err    error
}

// PreloadLocales warms several locales concurrently, one goroutine per
// locale. Each locale's result is independent; one failing load does not
// stop the others. Intended for process start-up, where cold caches for
// every supported locale would otherwise be paid for on the request path.
func (r *Resolver) PreloadLocales(ctx context.Context, locales []string) []PreloadResult {
	if len(locales) == 0 {
		return nil
	}

	// Deduplicate after normalization so a locale is loaded once
	seen := make(map[string]bool, len(locales))
	var unique []string
	for _, locale := range locales {
		locale = r.registry.Normalize(locale)
		if !seen[locale] {
			seen[locale] = true
			unique = append(unique, locale)
		}
	}

	results := make(chan PreloadResult, len(unique))
	var wg sync.WaitGroup

	for _, locale := range unique {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			loaded, err := r.Preload(ctx, loc, "")
			results <- PreloadResult{Locale: loc, Loaded: loaded, Err: err}
		}(locale)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byLocale := make(map[string]PreloadResult, len(unique))
	for res := range results {
		byLocale[res.Locale] = res
	}

	// Preserve the deduplicated input order
	out := make([]PreloadResult, 0, len(unique))
	for _, locale := range unique {
		out = append(out, byLocale[locale])
	}
	return out
}
