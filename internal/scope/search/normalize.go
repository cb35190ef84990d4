package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, strips diacritics and replaces every rune that
// is neither a word character nor whitespace with a space. "Café!" and
// "cafe" normalize to the same string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	stripped := Fold(text)

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}

	return strings.TrimSpace(b.String())
}

// Fold lowercases text and strips combining marks, leaving punctuation and
// spacing untouched.
func Fold(text string) string {
	lowered := strings.ToLower(text)

	// Transformers are stateful; build one per call.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(stripper, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
