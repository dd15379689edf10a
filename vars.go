package lokal

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// varPattern matches {{name}} placeholders. Names are word characters
// only; anything else is left for the renderer to display verbatim.
var varPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExtractVariables returns the distinct placeholder names in text, in
// order of first appearance. The order is deterministic so that derived
// Variables lists produce stable diffs.
func ExtractVariables(text string) []string {
	matches := varPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Interpolate substitutes {{name}} placeholders with values from vars.
// Placeholders without a matching key are left verbatim rather than
// removed, so a missing-variable bug is visible in the rendered text
// instead of silently disappearing.
func Interpolate(text string, vars map[string]any) string {
	if len(vars) == 0 {
		return text
	}
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[2 : len(match)-2]
		if val, ok := vars[name]; ok {
			return formatVar(val)
		}
		return match
	})
}

// formatVar renders an interpolation value as text.
func formatVar(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ValidateTranslation checks a translation at write time. The value must
// be non-empty after trimming. When vars is non-nil, the supplied
// variable set must exactly match the placeholders extracted from value:
// extras are "unused variable" errors, absences are "missing variable"
// errors. Read-time interpolation stays lenient on purpose; this strict
// check applies only when a caller opts in by supplying vars.
func ValidateTranslation(key, value string, vars map[string]any) (bool, []string) {
	var issues []string

	if strings.TrimSpace(key) == "" {
		issues = append(issues, "key must not be empty")
	}
	if strings.TrimSpace(value) == "" {
		issues = append(issues, "value must not be empty")
	}

	if vars != nil {
		extracted := ExtractVariables(value)
		inValue := make(map[string]bool, len(extracted))
		for _, name := range extracted {
			inValue[name] = true
		}

		var unused []string
		for name := range vars {
			if !inValue[name] {
				unused = append(unused, name)
			}
		}
		sort.Strings(unused)
		for _, name := range unused {
			issues = append(issues, fmt.Sprintf("unused variable %q", name))
		}
		for _, name := range extracted {
			if _, ok := vars[name]; !ok {
				issues = append(issues, fmt.Sprintf("missing variable %q", name))
			}
		}
	}

	return len(issues) == 0, issues
}
