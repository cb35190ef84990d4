// Package stats builds the usage dashboard of the prompt library.
package stats

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
)

// Dashboard thresholds
const (
	TopLimit        = 5
	MinRatedUses    = 3
	MinProblemDowns = 2
	RecentWindow    = 7 * 24 * time.Hour
)

// Overview holds library-wide counters.
type Overview struct {
	TotalPrompts      int `json:"totalPrompts"`
	PublishedPrompts  int `json:"publishedPrompts"`
	DraftPrompts      int `json:"draftPrompts"`
	ReviewPrompts     int `json:"reviewPrompts"`
	DeprecatedPrompts int `json:"deprecatedPrompts"`
	TotalCategories   int `json:"totalCategories"`
	TotalUsage        int `json:"totalUsage"`
	TotalThumbsUp     int `json:"totalThumbsUp"`
	TotalThumbsDown   int `json:"totalThumbsDown"`
	AvgRating         int `json:"avgRating"`
	RecentUsage       int `json:"recentUsage"`
}

// PromptSummary is the dashboard view of a prompt.
type PromptSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	UseCount   int    `json:"useCount"`
	ThumbsUp   int    `json:"thumbsUp"`
	ThumbsDown int    `json:"thumbsDown"`
}

// CategoryUsage sums published prompts and their uses for one category.
type CategoryUsage struct {
	Category     string `json:"category"`
	Color        string `json:"color"`
	PromptsCount int    `json:"promptsCount"`
	TotalUses    int    `json:"totalUses"`
}

// Dashboard is the response of the stats endpoint.
type Dashboard struct {
	Overview           Overview        `json:"overview"`
	TopPrompts         []PromptSummary `json:"topPrompts"`
	BestRatedPrompts   []PromptSummary `json:"bestRatedPrompts"`
	ProblematicPrompts []PromptSummary `json:"problematicPrompts"`
	UsageByCategory    []CategoryUsage `json:"usageByCategory"`
}

// Since returns the start of the recent-usage window ending at now.
func Since(now time.Time) time.Time {
	return now.Add(-RecentWindow)
}

// Compute derives the dashboard. usage must be summarized from Since(now).
// Rankings only consider published prompts; categories keep their given order.
func Compute(prompts []prompt.Prompt, categories []prompt.Category, usage db.UsageSummary) Dashboard {
	d := Dashboard{
		Overview: Overview{
			TotalPrompts:    len(prompts),
			TotalCategories: len(categories),
			TotalUsage:      usage.Total,
			TotalThumbsUp:   usage.ThumbsUp,
			TotalThumbsDown: usage.ThumbsDown,
			AvgRating:       AvgRating(usage.ThumbsUp, usage.ThumbsDown),
			RecentUsage:     usage.Recent,
		},
	}

	published := make([]prompt.Prompt, 0, len(prompts))
	for _, p := range prompts {
		switch p.Status {
		case prompt.StatusPublished:
			d.Overview.PublishedPrompts++
			published = append(published, p)
		case prompt.StatusDraft:
			d.Overview.DraftPrompts++
		case prompt.StatusReview:
			d.Overview.ReviewPrompts++
		case prompt.StatusDeprecated:
			d.Overview.DeprecatedPrompts++
		}
	}

	d.TopPrompts = rank(published, func(p prompt.Prompt) bool { return true },
		func(a, b prompt.Prompt) int { return cmp.Compare(b.UseCount, a.UseCount) })

	d.BestRatedPrompts = rank(published,
		func(p prompt.Prompt) bool { return p.UseCount >= MinRatedUses },
		func(a, b prompt.Prompt) int { return cmp.Compare(b.ThumbsUp, a.ThumbsUp) })

	d.ProblematicPrompts = rank(published,
		func(p prompt.Prompt) bool { return p.UseCount >= MinRatedUses && p.ThumbsDown >= MinProblemDowns },
		func(a, b prompt.Prompt) int { return cmp.Compare(b.ThumbsDown, a.ThumbsDown) })

	d.UsageByCategory = make([]CategoryUsage, 0, len(categories))
	for _, c := range categories {
		cu := CategoryUsage{Category: c.Name, Color: c.Color}
		for _, p := range published {
			if p.Category == c.Name {
				cu.PromptsCount++
				cu.TotalUses += p.UseCount
			}
		}
		d.UsageByCategory = append(d.UsageByCategory, cu)
	}

	return d
}

// AvgRating is the share of positive verdicts as a rounded percentage.
func AvgRating(up, down int) int {
	total := up + down
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(up) / float64(total) * 100))
}

func rank(ps []prompt.Prompt, keep func(prompt.Prompt) bool, order func(a, b prompt.Prompt) int) []PromptSummary {
	kept := make([]prompt.Prompt, 0, len(ps))
	for _, p := range ps {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	slices.SortStableFunc(kept, order)

	out := make([]PromptSummary, 0, TopLimit)
	for _, p := range kept[:min(TopLimit, len(kept))] {
		out = append(out, PromptSummary{
			ID:         p.ID,
			Title:      p.Title,
			Category:   p.Category,
			UseCount:   p.UseCount,
			ThumbsUp:   p.ThumbsUp,
			ThumbsDown: p.ThumbsDown,
		})
	}
	return out
}
