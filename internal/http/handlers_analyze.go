package httpapi

import (
	"net/http"
	"strings"

	"github.com/dsjohal14/promptlib/internal/scope/autotag"
	"github.com/dsjohal14/promptlib/internal/scope/pii"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/validate"
)

// HandlePII scans free text for personal data
func (h *Handler) HandlePII(w http.ResponseWriter, r *http.Request) {
	var req PIIRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	detections := pii.Detect(req.Text)
	found := pii.Found(detections)
	for _, d := range found {
		h.metrics.ObservePII(d.Type)
	}

	level := pii.LevelOf(detections)
	writeJSON(w, http.StatusOK, PIIResponse{
		Detections:  found,
		RiskLevel:   level,
		HasHighRisk: level == prompt.RiskHigh,
		Warning:     pii.Warning(detections),
	})
}

// HandleAnalyze grades a prompt draft and suggests tags, category and risk
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	report := validate.Quality(validate.PromptDraft{
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		Category:    req.Category,
	})
	text := strings.Join([]string{req.Title, req.Description, req.Body}, " ")
	tags := autotag.Suggest(text)

	category := autotag.DefaultCategory
	if len(tags) > 0 {
		category = tags[0]
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Quality:           report,
		QualityLabel:      validate.ScoreLabel(report.Score),
		SuggestedTags:     tags,
		SuggestedCategory: category,
		Variables:         autotag.ExtractVariables(req.Body),
		Complexity:        autotag.AnalyzeComplexity(req.Body, len(req.VariablesSchema)),
		RiskLevel:         pii.RiskLevel(req.Body),
	})
}
