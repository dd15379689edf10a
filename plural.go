package lokal

// PluralForm is a grammatical plural category.
type PluralForm string

const (
	PluralZero  PluralForm = "zero"
	PluralOne   PluralForm = "one"
	PluralTwo   PluralForm = "two"
	PluralFew   PluralForm = "few"
	PluralMany  PluralForm = "many"
	PluralOther PluralForm = "other"
)

// PluralCategory evaluates a pluralization class against a count and
// returns the matching category. Negative counts are classified by their
// absolute value.
func PluralCategory(class PluralClass, count int) PluralForm {
	n := count
	if n < 0 {
		n = -n
	}

	switch class {
	case ClassSlavic:
		return slavicCategory(n)
	default:
		if n == 1 {
			return PluralOne
		}
		return PluralOther
	}
}

// slavicCategory implements the Russian one/few/many rule:
// 1, 21, 31... → one; 2-4, 22-24... → few (except the teens); else many.
func slavicCategory(n int) PluralForm {
	mod10 := n % 10
	mod100 := n % 100

	if mod10 == 1 && mod100 != 11 {
		return PluralOne
	}
	if mod10 >= 2 && mod10 <= 4 && (mod100 < 10 || mod100 >= 20) {
		return PluralFew
	}
	return PluralMany
}

// ResolvePlural picks the variant of forms matching the count under the
// given class, falling back to the Other variant whenever the selected
// category has no text.
func ResolvePlural(count int, forms *PluralForms, class PluralClass) string {
	if forms == nil {
		return ""
	}
	return forms.Form(PluralCategory(class, count))
}
