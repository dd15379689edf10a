package lokal

// PluralClass identifies the grammatical rule family governing which
// plural form applies for a given count.
type PluralClass string

const (
	// ClassSimple covers languages with a bare singular/plural split
	// (English, Kyrgyz): n == 1 selects "one", everything else "other".
	ClassSimple PluralClass = "simple"

	// ClassSlavic covers the Russian-style one/few/many split driven by
	// the last digits of the count.
	ClassSlavic PluralClass = "slavic"
)

// RegistryConfig describes the closed locale set. Adding a locale is a
// configuration change, not a code change.
type RegistryConfig struct {
	Default   string                 // Served when a caller's locale is unknown
	Fallbacks map[string]string      // Total map; the chain must terminate in one hop
	Classes   map[string]PluralClass // Locale → pluralization class (default: simple)
}

// Registry is the canonical table of supported locales, the default
// locale, and the fallback order. All lookups are pure.
type Registry struct {
	def       string
	fallbacks map[string]string
	classes   map[string]PluralClass
}

// NewRegistry builds a registry from configuration. Every key of
// cfg.Fallbacks is a supported locale; a locale missing its own entry in
// cfg.Classes is treated as ClassSimple.
func NewRegistry(cfg RegistryConfig) *Registry {
	fallbacks := make(map[string]string, len(cfg.Fallbacks))
	for loc, fb := range cfg.Fallbacks {
		fallbacks[loc] = fb
	}
	classes := make(map[string]PluralClass, len(cfg.Classes))
	for loc, class := range cfg.Classes {
		classes[loc] = class
	}
	return &Registry{
		def:       cfg.Default,
		fallbacks: fallbacks,
		classes:   classes,
	}
}

// DefaultRegistry returns the marketplace locale set: Kyrgyz falling back
// to Russian, Russian to English, English terminal.
func DefaultRegistry() *Registry {
	return NewRegistry(RegistryConfig{
		Default: "ru",
		Fallbacks: map[string]string{
			"ky": "ru",
			"ru": "en",
			"en": "en",
		},
		Classes: map[string]PluralClass{
			"ky": ClassSimple,
			"ru": ClassSlavic,
			"en": ClassSimple,
		},
	})
}

// IsSupported reports whether the code belongs to the supported set.
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.fallbacks[code]
	return ok
}

// Default returns the configured default locale.
func (r *Registry) Default() string {
	return r.def
}

// FallbackOf returns the single fallback for a locale. The function is
// total: unsupported locales fall back to the default, and the terminal
// locale maps to itself, so callers may loop until the locale stops
// changing.
func (r *Registry) FallbackOf(locale string) string {
	if fb, ok := r.fallbacks[locale]; ok {
		return fb
	}
	return r.def
}

// ClassOf returns the pluralization class for a locale.
func (r *Registry) ClassOf(locale string) PluralClass {
	if class, ok := r.classes[locale]; ok {
		return class
	}
	return ClassSimple
}

// Locales returns the supported locale codes in unspecified order.
func (r *Registry) Locales() []string {
	out := make([]string, 0, len(r.fallbacks))
	for loc := range r.fallbacks {
		out = append(out, loc)
	}
	return out
}

// Normalize maps any caller-supplied code onto the supported set,
// substituting the default for unknown or empty input.
func (r *Registry) Normalize(code string) string {
	if r.IsSupported(code) {
		return code
	}
	return r.def
}
