package search

import (
	"cmp"
	"slices"
	"strings"
)

// Per-token relevance weights.
const (
	titleWeight       = 10
	descriptionWeight = 5
	tagWeight         = 3
	anywhereWeight    = 1
)

// Score sums, over every query token, the weights of the fields containing it.
// The "anywhere" weight stacks with the field weights.
func Score(f Fields, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}

	title := Normalize(f.Title)
	description := Normalize(f.Description)
	tags := make([]string, len(f.Tags))
	for i, tag := range f.Tags {
		tags[i] = Normalize(tag)
	}
	all := searchableText(f)

	score := 0
	for _, token := range tokens {
		if strings.Contains(title, token) {
			score += titleWeight
		}
		if strings.Contains(description, token) {
			score += descriptionWeight
		}
		for _, tag := range tags {
			if strings.Contains(tag, token) {
				score += tagWeight
				break
			}
		}
		if strings.Contains(all, token) {
			score += anywhereWeight
		}
	}

	return score
}

// Rank returns records sorted by descending Score against query. Ties keep
// their input order. A blank query returns records unchanged.
func Rank[R Record](records []R, query string) []R {
	if strings.TrimSpace(query) == "" {
		return records
	}

	tokens := Tokens(query)

	type scored struct {
		rec   R
		score int
	}

	items := make([]scored, len(records))
	for i, rec := range records {
		items[i] = scored{rec: rec, score: Score(rec.SearchFields(), tokens)}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]R, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}
