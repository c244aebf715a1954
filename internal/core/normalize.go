package core

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combining diacritical marks block
var diacritic = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
})

// Normalize returns the comparison form of s: lowercase, decomposed, with
// combining diacritics removed.
func Normalize(s string) string {
	lower := strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(diacritic))
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}

// SearchIncludes reports whether needle occurs in haystack, ignoring case and accents.
func SearchIncludes(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}
