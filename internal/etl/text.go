package etl

import (
	"strconv"
	"strings"
	"unicode"
)

// titleCase trims surrounding whitespace and capitalizes the first
// letter of every word, lowercasing the rest. A word boundary is any
// non-letter, so "o'brien-smith" becomes "O'Brien-Smith".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case !unicode.IsLetter(r):
			inWord = false
			b.WriteRune(r)
		case inWord:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			inWord = true
		}
	}
	return b.String()
}

func upperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// digitsOnly strips every non-digit rune.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cleanZip keeps digits and dashes, truncated to ten characters to
// cover the ZIP+4 format.
func cleanZip(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	z := b.String()
	if len(z) > 10 {
		z = z[:10]
	}
	return z
}

// parseFloat reports whether the field held a usable number. Malformed
// or empty fields degrade to (0, false) instead of an error.
func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return false
	}
	return v
}
