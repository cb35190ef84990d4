package search

import (
	"strings"
	"unicode/utf8"
)

// Matching thresholds. Empirical values kept for behavioral compatibility.
const (
	// minTokenLen drops single-character query tokens as noise.
	minTokenLen = 2
	// minFuzzyWordLen is the shortest text word eligible for typo matching.
	minFuzzyWordLen = 3
	// fuzzyDivisor allows one edit per this many runes of the text word.
	fuzzyDivisor = 3
)

// Tokens normalizes a query and splits it into terms of at least two runes.
func Tokens(query string) []string {
	fields := strings.Fields(Normalize(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// MatchesSearch reports whether every query token is found in the record's
// title, description, body or tags. A token is found when it is a substring of
// the normalized text, or when a text word of three or more runes lies within
// floor(len(word)/3) edits of it. A blank query matches everything.
func MatchesSearch(f Fields, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	return matchTokens(f, Tokens(query))
}

func matchTokens(f Fields, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}

	text := searchableText(f)
	var words []string

	for _, token := range tokens {
		if strings.Contains(text, token) {
			continue
		}
		if words == nil {
			words = strings.Fields(text)
		}
		if !fuzzyContains(words, token) {
			return false
		}
	}

	return true
}

func fuzzyContains(words []string, token string) bool {
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n < minFuzzyWordLen {
			continue
		}
		if Distance(token, w) <= n/fuzzyDivisor {
			return true
		}
	}
	return false
}

// searchableText is the normalized concatenation of title, description, body and tags.
func searchableText(f Fields) string {
	parts := make([]string, 0, 3+len(f.Tags))
	parts = append(parts, f.Title, f.Description, f.Body)
	parts = append(parts, f.Tags...)
	return Normalize(strings.Join(parts, " "))
}
