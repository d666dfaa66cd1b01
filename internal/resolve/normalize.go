package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips diacritics: decompose, drop combining marks,
// recompose. "José" and "Jose" normalize to the same string.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a person name for identity matching: case
// fold, whitespace collapse, diacritic fold. The original spelling is kept
// separately as a name variant.
func NormalizeName(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// NormalizeID canonicalizes a government identifier: uppercase, strip
// spaces and dashes.
func NormalizeID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(id) {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
