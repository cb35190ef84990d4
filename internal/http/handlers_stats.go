package httpapi

import (
	"net/http"
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/stats"
)

// HandleStats builds the usage dashboard
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	prompts, err := h.store.AllPrompts(ctx)
	if err != nil {
		h.internalError(w, r, err, "failed to load prompts")
		return
	}
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		h.internalError(w, r, err, "failed to load categories")
		return
	}
	usage, err := h.store.UsageSummary(ctx, stats.Since(time.Now().UTC()))
	if err != nil {
		h.internalError(w, r, err, "failed to summarize usage")
		return
	}

	writeJSON(w, http.StatusOK, stats.Compute(prompts, categories, usage))
}
