package lokal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver is the translation resolution engine. It combines the cache
// layer, the persistent store, and the text transforms into the public
// localization contract: lookups never fail (a missing translation
// resolves to its own key), writes invalidate the affected locale's
// cache before returning.
type Resolver struct {
	store    Store
	cache    Cache
	registry *Registry
	logger   *zap.Logger
}

// ResolverOption is a functional option for configuring the Resolver.
type ResolverOption func(*Resolver)

// WithCache sets the cache layer. Without one the engine resolves
// directly against the store.
func WithCache(cache Cache) ResolverOption {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// WithRegistry sets the locale registry.
func WithRegistry(registry *Registry) ResolverOption {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver backed by the given store. By default it
// uses DefaultRegistry, no cache, and a no-op logger.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:    store,
		registry: DefaultRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the locale registry the engine resolves against.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// ResolveRequest describes a single translation lookup.
type ResolveRequest struct {
	Key            string
	Locale         string
	Vars           map[string]any // Optional interpolation values
	Count          *int           // Optional count for plural resolution
	FallbackLocale string         // Overrides the registry's configured fallback
}

// Resolve answers a single (key, locale) lookup. Unsupported locales are
// normalized to the default; on a miss the single configured fallback
// locale is consulted (one hop, never transitively); when nothing is
// found anywhere the key itself is returned so rendering never breaks.
//
// Count-bearing requests bypass the flattened cache, which stores only
// the value projection and cannot answer plural forms.
//
// Read path: store failures degrade to a miss and are logged.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) Resolution {
	locale := r.registry.Normalize(req.Locale)
	fallback := req.FallbackLocale
	if fallback == "" {
		fallback = r.registry.FallbackOf(locale)
	}

	if req.Count == nil && r.cache != nil {
		if values, ok := r.cache.Get(ctx, locale, ""); ok {
			if value, ok := values[req.Key]; ok {
				return Resolution{
					Key:    req.Key,
					Locale: locale,
					Value:  Interpolate(value, req.Vars),
					Cached: true,
				}
			}
		}
	}

	t := r.storeGet(ctx, req.Key, locale)
	if t == nil && fallback != locale {
		t = r.storeGet(ctx, req.Key, fallback)
	}

	value := req.Key
	if t != nil {
		value = t.Value
		if t.PluralForms != nil && req.Count != nil {
			value = ResolvePlural(*req.Count, t.PluralForms, r.registry.ClassOf(t.Locale))
		}
	}

	return Resolution{
		Key:    req.Key,
		Locale: locale,
		Value:  Interpolate(value, req.Vars),
		Cached: false,
	}
}

// storeGet fetches one translation, degrading store errors to a miss.
func (r *Resolver) storeGet(ctx context.Context, key, locale string) *Translation {
	t, err := r.store.Get(ctx, key, locale)
	if err != nil {
		r.logger.Warn("translation read failed, treating as miss",
			zap.String("key", key),
			zap.String("locale", locale),
			zap.Error(err))
		return nil
	}
	return t
}

// BulkRequest describes a multi-key translation lookup.
type BulkRequest struct {
	Keys           []string
	Locale         string
	VarsByKey      map[string]map[string]any // Optional per-key interpolation values
	FallbackLocale string
}

// ResolveMany answers a multi-key lookup against the locale-wide cache
// entry, falling through to chunked store reads on a miss. Keys still
// absent after the single fallback hop appear in Missing and map to
// themselves in Translations. The rebuilt cache entry holds the union of
// values found for the requested key set; callers wanting the full
// locale pinned should Preload it.
//
// Read path: any store failure degrades to every key mapping to itself;
// ResolveMany never returns an error.
func (r *Resolver) ResolveMany(ctx context.Context, req BulkRequest) BulkResolution {
	locale := r.registry.Normalize(req.Locale)
	fallback := req.FallbackLocale
	if fallback == "" {
		fallback = r.registry.FallbackOf(locale)
	}

	if r.cache != nil {
		if values, ok := r.cache.Get(ctx, locale, ""); ok {
			return r.assemble(req, locale, values, true)
		}
	}

	found, err := r.store.GetMany(ctx, req.Keys, locale)
	if err != nil {
		r.logger.Warn("bulk translation read failed, degrading to keys",
			zap.String("locale", locale),
			zap.Int("keys", len(req.Keys)),
			zap.Error(err))
		return r.assemble(req, locale, nil, false)
	}

	var missing []string
	for _, key := range req.Keys {
		if _, ok := found[key]; !ok {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 && fallback != locale {
		fbFound, err := r.store.GetMany(ctx, missing, fallback)
		if err != nil {
			r.logger.Warn("fallback bulk read failed",
				zap.String("locale", fallback),
				zap.Error(err))
		} else {
			for key, t := range fbFound {
				found[key] = t
			}
		}
	}

	values := make(map[string]string, len(found))
	for key, t := range found {
		values[key] = t.Value
	}

	if r.cache != nil && len(values) > 0 {
		if err := r.cache.Put(ctx, locale, "", values); err != nil {
			r.logger.Warn("cache rebuild failed",
				zap.String("locale", locale),
				zap.Error(err))
		}
	}

	return r.assemble(req, locale, values, false)
}

// assemble builds the bulk result from a flattened value map, applying
// per-key interpolation and the key-as-value policy for absences.
func (r *Resolver) assemble(req BulkRequest, locale string, values map[string]string, cached bool) BulkResolution {
	out := BulkResolution{
		Locale:       locale,
		Translations: make(map[string]string, len(req.Keys)),
		Cached:       cached,
	}
	for _, key := range req.Keys {
		value, ok := values[key]
		if !ok {
			out.Translations[key] = key
			out.Missing = append(out.Missing, key)
			continue
		}
		out.Translations[key] = Interpolate(value, req.VarsByKey[key])
	}
	return out
}

// Save validates and persists a translation, then invalidates the cache
// for its locale. Variables are always recomputed from the value; any
// caller-supplied list is discarded.
//
// Write path: store failures propagate.
func (r *Resolver) Save(ctx context.Context, t Translation) (Translation, error) {
	ok, issues := ValidateTranslation(t.Key, t.Value, nil)
	if !r.registry.IsSupported(t.Locale) {
		ok = false
		issues = append(issues, fmt.Sprintf("unsupported locale %q", t.Locale))
	}
	if !ok {
		return Translation{}, &ValidationError{Key: t.Key, Issues: issues}
	}

	t.Variables = ExtractVariables(t.Value)
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	persisted, err := r.store.Put(ctx, t)
	if err != nil {
		return Translation{}, err
	}

	r.invalidate(ctx, t.Locale)
	return persisted, nil
}

// Delete removes a translation and invalidates the locale's cache. It is
// idempotent: deleting an absent key succeeds.
//
// Write path: store failures propagate.
func (r *Resolver) Delete(ctx context.Context, key, locale string) error {
	if err := r.store.Delete(ctx, key, locale); err != nil {
		return err
	}
	r.invalidate(ctx, locale)
	return nil
}

// Import bulk-loads a flat key→value map into a locale. With
// overwrite=false, keys that already exist are skipped (a per-key point
// read; imports are administrative, the cost is accepted). Invalid pairs
// are reported per key and excluded from the write set. The cache is
// invalidated once after the batch, even when a chunk fails, since part
// of the batch may have landed.
//
// Write path: a failed write chunk aborts the remaining chunks and is
// returned as an ImportError; the report still reflects what landed.
func (r *Resolver) Import(ctx context.Context, locale string, flat map[string]string, category string, overwrite bool) (*ImportReport, error) {
	if !r.registry.IsSupported(locale) {
		return nil, &ValidationError{Issues: []string{fmt.Sprintf("unsupported locale %q", locale)}}
	}
	if category == "" {
		category = DefaultCategory
	}

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	report := &ImportReport{}
	batch := make([]Translation, 0, len(keys))

	for _, key := range keys {
		value := flat[key]

		if !overwrite {
			if existing := r.storeGet(ctx, key, locale); existing != nil {
				report.Skipped++
				continue
			}
		}

		if ok, issues := ValidateTranslation(key, value, nil); !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", key, strings.Join(issues, "; ")))
			continue
		}

		batch = append(batch, Translation{
			ID:        uuid.NewString(),
			Key:       key,
			Locale:    locale,
			Value:     value,
			Category:  category,
			Variables: ExtractVariables(value),
		})
	}

	written, err := r.store.PutMany(ctx, batch)
	report.Imported = written

	r.invalidate(ctx, locale)

	if err != nil {
		return report, &ImportError{Locale: locale, Cause: err}
	}
	return report, nil
}

// ExportAll returns the flattened key→value map for a locale, optionally
// restricted to a category.
//
// Read path: store failures degrade to an empty map.
func (r *Resolver) ExportAll(ctx context.Context, locale, category string) map[string]string {
	locale = r.registry.Normalize(locale)
	ts, err := r.store.QueryByLocale(ctx, locale, category)
	if err != nil {
		r.logger.Warn("export query failed",
			zap.String("locale", locale),
			zap.Error(err))
		return map[string]string{}
	}
	return flatten(ts)
}

// Preload forces a full load of a locale (optionally one category) and
// writes the result into both cache tiers, replacing whatever entry was
// there. This is the explicit warming operation, distinct from the lazy
// population done by ResolveMany.
func (r *Resolver) Preload(ctx context.Context, locale, category string) (int, error) {
	locale = r.registry.Normalize(locale)
	ts, err := r.store.QueryByLocale(ctx, locale, category)
	if err != nil {
		return 0, err
	}

	values := flatten(ts)
	if r.cache != nil {
		if err := r.cache.Put(ctx, locale, category, values); err != nil {
			return 0, err
		}
	}
	return len(values), nil
}

// Search finds translations whose key or value contains the query,
// case-insensitively. Full scan; administrative use only.
func (r *Resolver) Search(ctx context.Context, query, locale, category string, limit int) ([]Translation, error) {
	return r.store.Search(ctx, query, locale, category, limit)
}

// invalidate drops the locale's cache entries; failures are logged, not
// returned, because the write that triggered the invalidation already
// succeeded.
func (r *Resolver) invalidate(ctx context.Context, locale string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, locale); err != nil {
		r.logger.Warn("cache invalidation failed",
			zap.String("locale", locale),
			zap.Error(err))
	}
}

// flatten projects translations onto their value-only map form.
func flatten(ts []Translation) map[string]string {
	values := make(map[string]string, len(ts))
	for _, t := range ts {
		values[t.Key] = t.Value
	}
	return values
}
