package search

import "sort"

// ExtractTags returns the union of all record tags, deduplicated and sorted
// in ascending code point order.
func ExtractTags[R Record](records []R) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, tag := range rec.SearchFields().Tags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
