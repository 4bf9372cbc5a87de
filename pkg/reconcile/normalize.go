// Package reconcile computes and applies differences between the canonical
// store and a freshly parsed list. Comparison is done over normalized text
// so accent marks, casing and whitespace noise introduced by re-scanning a
// printed list never show up as changes.
package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and removes their combining marks, so
// "Á" and "A" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a descriptive value for comparison: accents are
// stripped, case folded to upper, and interior whitespace collapsed to
// single spaces.
func Normalize(s string) string {
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToUpper(stripped)), " ")
}

// Equivalent reports whether two descriptive values are equal after
// normalization.
func Equivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
