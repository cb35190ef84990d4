// Package riskscan re-checks stored prompts for personal data and missing tags.
package riskscan

import (
	"context"
	"fmt"

	"github.com/dsjohal14/promptlib/internal/libs/accel"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/autotag"
	"github.com/dsjohal14/promptlib/internal/scope/pii"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
)

// BatchSize is how many prompts are inspected between cancellation checks.
const BatchSize = 50

// Source lists every prompt. db.Storage satisfies it.
type Source interface {
	AllPrompts(ctx context.Context) ([]prompt.Prompt, error)
}

// Underrated is a prompt whose body carries more sensitive data than its
// declared risk level admits.
type Underrated struct {
	PromptID string           `json:"promptId"`
	Title    string           `json:"title"`
	Stored   prompt.RiskLevel `json:"stored"`
	Detected prompt.RiskLevel `json:"detected"`
	Types    []string         `json:"types"`
}

// Untagged is a prompt without tags and the tags suggested for it.
type Untagged struct {
	PromptID  string   `json:"promptId"`
	Title     string   `json:"title"`
	Suggested []string `json:"suggested"`
}

// Report is the outcome of one scan.
type Report struct {
	Scanned    int          `json:"scanned"`
	Underrated []Underrated `json:"underrated"`
	Untagged   []Untagged   `json:"untagged"`
}

// Scanner inspects every prompt of a Source.
type Scanner struct {
	source  Source
	metrics *obs.Metrics
	batch   *accel.Batch
}

// New creates a scanner. metrics may be nil.
func New(source Source, metrics *obs.Metrics) *Scanner {
	return &Scanner{source: source, metrics: metrics, batch: accel.NewBatch(BatchSize)}
}

// Run scans all prompts. Deprecated prompts are skipped.
func (s *Scanner) Run(ctx context.Context) (Report, error) {
	logger := obs.Logger("riskscan")

	prompts, err := s.source.AllPrompts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list prompts: %w", err)
	}

	rep := Report{Underrated: []Underrated{}, Untagged: []Untagged{}}
	err = accel.Each(ctx, s.batch, prompts, func(_ context.Context, chunk []prompt.Prompt) error {
		for _, p := range chunk {
			if p.Status == prompt.StatusDeprecated {
				continue
			}
			rep.Scanned++
			inspect(p, &rep)
		}
		s.metrics.ObserveScanned(len(chunk))
		return nil
	})
	if err != nil {
		return rep, err
	}

	for _, u := range rep.Underrated {
		logger.Warn().
			Str("prompt_id", u.PromptID).
			Str("stored", string(u.Stored)).
			Str("detected", string(u.Detected)).
			Strs("types", u.Types).
			Msg("prompt risk level is lower than its content")
	}
	for _, u := range rep.Untagged {
		logger.Info().
			Str("prompt_id", u.PromptID).
			Strs("suggested", u.Suggested).
			Msg("untagged prompt")
	}
	return rep, nil
}

func inspect(p prompt.Prompt, rep *Report) {
	detections := pii.Detect(p.Body)
	if level := pii.LevelOf(detections); level.Rank() > p.RiskLevel.Rank() {
		types := []string{}
		for _, d := range pii.Found(detections) {
			types = append(types, d.Type)
		}
		rep.Underrated = append(rep.Underrated, Underrated{
			PromptID: p.ID,
			Title:    p.Title,
			Stored:   p.RiskLevel,
			Detected: level,
			Types:    types,
		})
	}

	if len(p.Tags) == 0 {
		if tags := autotag.Suggest(p.Title + " " + p.Description + " " + p.Body); len(tags) > 0 {
			rep.Untagged = append(rep.Untagged, Untagged{PromptID: p.ID, Title: p.Title, Suggested: tags})
		}
	}
}
