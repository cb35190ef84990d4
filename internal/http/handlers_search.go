package httpapi

import (
	"net/http"
)

// Search result limits
const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// HandleSearch runs the filter and ranking pipeline over published prompts
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.logger.Warn().Err(err).Msg("invalid search request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	// Set default and max limits
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}
	if req.Limit > maxSearchLimit {
		req.Limit = maxSearchLimit
	}

	matches, err := h.library.Search(r.Context(), req.Query)
	if err != nil {
		h.internalError(w, r, err, "failed to search prompts")
		return
	}

	total := len(matches)
	if total > req.Limit {
		matches = matches[:req.Limit]
	}

	h.logger.Info().
		Str("query", req.Search).
		Str("category", req.Category).
		Int("results", len(matches)).
		Int("total", total).
		Msg("search completed")

	writeJSON(w, http.StatusOK, SearchResponse{
		Results: matches,
		Count:   len(matches),
		Total:   total,
		Query:   req.Search,
	})
}

// HandleTags lists the distinct tags of published prompts
func (h *Handler) HandleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.library.Tags(r.Context())
	if err != nil {
		h.internalError(w, r, err, "failed to list tags")
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags, Count: len(tags)})
}
