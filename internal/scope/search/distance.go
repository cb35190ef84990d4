package search

import "github.com/hbollon/go-edlib"

// Distance returns the Levenshtein edit distance between a and b, counting
// insertions, deletions and substitutions of runes at cost 1 each.
func Distance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}
