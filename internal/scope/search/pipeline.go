package search

import "strings"

// Filter returns the records satisfying the search text, category, tag and
// favorite constraints of q, in their original order. The input is not modified.
func Filter[R Record](records []R, q Query) []R {
	out := make([]R, 0, len(records))
	if len(records) == 0 {
		return out
	}

	var tokens []string
	if strings.TrimSpace(q.Search) != "" {
		tokens = Tokens(q.Search)
	}

	for _, rec := range records {
		f := rec.SearchFields()
		if !matchTokens(f, tokens) {
			continue
		}
		if !MatchesCategory(f, q.Category) {
			continue
		}
		if !MatchesTags(f, q.Tags) {
			continue
		}
		if !MatchesFavorite(f, q.OnlyFavorites) {
			continue
		}
		out = append(out, rec)
	}

	return out
}

// Search filters records by q and orders the matches by relevance to q.Search.
func Search[R Record](records []R, q Query) []R {
	return Rank(Filter(records, q), q.Search)
}
