package lokal

import "testing"

func TestDefaultRegistry_Supported(t *testing.T) {
	r := DefaultRegistry()

	for _, locale := range []string{"ky", "ru", "en"} {
		if !r.IsSupported(locale) {
			t.Errorf("IsSupported(%q) = false, want true", locale)
		}
	}

	for _, locale := range []string{"de", "EN", "ru-RU", ""} {
		if r.IsSupported(locale) {
			t.Errorf("IsSupported(%q) = true, want false", locale)
		}
	}
}

func TestDefaultRegistry_Default(t *testing.T) {
	r := DefaultRegistry()
	if r.Default() != "ru" {
		t.Errorf("Default() = %q, want %q", r.Default(), "ru")
	}
}

func TestDefaultRegistry_FallbackChain(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		locale string
		want   string
	}{
		{"ky", "ru"},
		{"ru", "en"},
		{"en", "en"}, // terminal locale maps to itself
		{"de", "ru"}, // unsupported falls back to the default
	}

	for _, tt := range tests {
		if got := r.FallbackOf(tt.locale); got != tt.want {
			t.Errorf("FallbackOf(%q) = %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestRegistry_FallbackTerminates(t *testing.T) {
	r := DefaultRegistry()

	// Walking the chain from any supported locale must reach a fixed
	// point within the size of the locale set.
	for _, start := range r.Locales() {
		locale := start
		for i := 0; i <= len(r.Locales()); i++ {
			next := r.FallbackOf(locale)
			if next == locale {
				locale = ""
				break
			}
			locale = next
		}
		if locale != "" {
			t.Errorf("fallback chain from %q does not terminate", start)
		}
	}
}

func TestRegistry_ClassOf(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		locale string
		want   PluralClass
	}{
		{"en", ClassSimple},
		{"ky", ClassSimple},
		{"ru", ClassSlavic},
		{"de", ClassSimple}, // unknown defaults to simple
	}

	for _, tt := range tests {
		if got := r.ClassOf(tt.locale); got != tt.want {
			t.Errorf("ClassOf(%q) = %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestRegistry_Normalize(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		in   string
		want string
	}{
		{"ky", "ky"},
		{"en", "en"},
		{"de", "ru"},
		{"", "ru"},
	}

	for _, tt := range tests {
		if got := r.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRegistry_Custom(t *testing.T) {
	r := NewRegistry(RegistryConfig{
		Default: "en",
		Fallbacks: map[string]string{
			"en": "en",
			"kk": "en",
		},
		Classes: map[string]PluralClass{
			"kk": ClassSimple,
		},
	})

	if !r.IsSupported("kk") {
		t.Error("custom locale should be supported")
	}
	if r.FallbackOf("kk") != "en" {
		t.Errorf("FallbackOf(kk) = %q, want en", r.FallbackOf("kk"))
	}
	if r.Default() != "en" {
		t.Errorf("Default() = %q, want en", r.Default())
	}
}
