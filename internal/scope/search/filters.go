package search

import (
	"slices"
	"strings"
)

// MatchesCategory requires an exact category match unless category is blank.
func MatchesCategory(f Fields, category string) bool {
	if strings.TrimSpace(category) == "" {
		return true
	}
	return f.Category == category
}

// MatchesTags reports whether the record carries any of the selected tags.
// An empty selection matches everything.
func MatchesTags(f Fields, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, tag := range f.Tags {
		if slices.Contains(selected, tag) {
			return true
		}
	}
	return false
}

// MatchesFavorite requires the favorite flag only when onlyFavorites is set.
func MatchesFavorite(f Fields, onlyFavorites bool) bool {
	return !onlyFavorites || f.Favorite
}
