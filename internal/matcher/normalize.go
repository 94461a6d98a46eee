// file: internal/matcher/normalize.go
// version: 1.0.0
// guid: 3f8a1c6d-9b24-4e7a-8c05-d1f62b9e4a73

package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxFieldLen caps the text fed into the distance computation. Scoring is
// O(n*m), so unbounded attacker-supplied fields would be a cheap way to burn
// CPU; anything past the cap cannot plausibly matter for a dealer name or
// city anyway.
const maxFieldLen = 256

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes free text for comparison: decomposes and drops
// diacritic marks, lower-cases, and removes every character outside [a-z0-9].
// "Mercedes-Benz" and "mercedesbenz" normalize identically, as do
// "St. Louis" and "stlouis". Empty input normalizes to the empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > maxFieldLen {
		s = s[:maxFieldLen]
	}
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
