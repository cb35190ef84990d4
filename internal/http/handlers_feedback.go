package httpapi

import (
	"net/http"

	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/validate"
	"github.com/go-chi/chi/v5"
)

// HandleRecordFeedback records a use of a prompt by the current user. A user
// who already left a verdict has it replaced instead.
func (h *Handler) HandleRecordFeedback(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := chi.URLParam(r, "id")

	var req FeedbackRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.logger.Warn().Err(err).Msg("invalid feedback request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if errs := validate.Feedback(req.Feedback, req.Comment, req.DataRiskLevel); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	res, err := h.store.RecordFeedback(r.Context(), db.FeedbackInput{
		PromptID:      id,
		UserID:        user.ID,
		Feedback:      req.Feedback,
		Comment:       req.Comment,
		DataRiskLevel: req.DataRiskLevel,
		VariablesUsed: req.VariablesUsed,
	})
	if err != nil {
		h.storeError(w, r, err, "failed to record feedback")
		return
	}
	h.library.Invalidate()

	h.logger.Info().
		Str("prompt_id", id).
		Str("user_id", user.ID).
		Str("feedback", string(req.Feedback)).
		Bool("updated", res.Updated).
		Msg("feedback recorded")

	resp := FeedbackResponse{Usage: res.Usage}
	if res.Updated {
		resp.Meta = &FeedbackMeta{Updated: true, PreviousFeedback: res.PreviousFeedback}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleListFeedback returns the latest usage events of a prompt
func (h *Handler) HandleListFeedback(w http.ResponseWriter, r *http.Request) {
	usage, err := h.store.ListUsage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, err, "failed to list feedback")
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
