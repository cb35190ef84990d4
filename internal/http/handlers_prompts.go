package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dsjohal14/promptlib/internal/scope/auth"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/validate"
	"github.com/go-chi/chi/v5"
)

// Pagination of the prompt list
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// HandleListPrompts lists prompts filtered by status, category, favorites
// and a substring search. With page or limit set the result is wrapped in a
// PromptPage; otherwise every match is returned as a plain array.
func (h *Handler) HandleListPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := db.PromptFilter{
		Status:        prompt.Status(q.Get("status")),
		Category:      q.Get("category"),
		Search:        q.Get("search"),
		OnlyFavorites: q.Get("favorites") == "true",
	}
	if f.Status != "" && f.Status != db.StatusAny && !f.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status", "INVALID_STATUS")
		return
	}

	paginated := q.Has("page") || q.Has("limit")
	page, limit := 1, defaultPageLimit
	if paginated {
		var ok bool
		if page, ok = intParam(q.Get("page"), 1); !ok || page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer", "INVALID_PAGE")
			return
		}
		if limit, ok = intParam(q.Get("limit"), defaultPageLimit); !ok || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "INVALID_LIMIT")
			return
		}
		limit = min(limit, maxPageLimit)
		f.Offset = (page - 1) * limit
		f.Limit = limit
	}

	prompts, total, err := h.store.ListPrompts(r.Context(), f)
	if err != nil {
		h.internalError(w, r, err, "failed to list prompts")
		return
	}

	h.logger.Debug().
		Str("status", string(f.Status)).
		Str("category", f.Category).
		Int("results", len(prompts)).
		Int("total", total).
		Msg("prompts listed")

	if !paginated {
		writeJSON(w, http.StatusOK, prompts)
		return
	}
	writeJSON(w, http.StatusOK, PromptPage{
		Data:    prompts,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: f.Offset+len(prompts) < total,
	})
}

func intParam(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// HandleCreatePrompt stores a new draft authored by the current user
func (h *Handler) HandleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req PromptRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.logger.Warn().Err(err).Msg("invalid create prompt request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if errs := validate.CreatePrompt(req.fields()); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	p := prompt.Prompt{Status: prompt.StatusDraft, AuthorID: user.ID}
	applyRequest(&p, req)

	created, err := h.store.CreatePrompt(r.Context(), p, user.ID)
	if err != nil {
		h.storeError(w, r, err, "failed to create prompt")
		return
	}
	h.library.Invalidate()

	h.logger.Info().
		Str("prompt_id", created.ID).
		Str("user_id", user.ID).
		Str("category", created.Category).
		Msg("prompt created")

	writeJSON(w, http.StatusCreated, created)
}

// HandleGetPrompt returns a prompt with its latest versions
func (h *Handler) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPrompt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, err, "failed to get prompt")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdatePrompt applies a partial update. A changed body snapshots the
// previous version.
func (h *Handler) HandleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := chi.URLParam(r, "id")

	var req PromptRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.logger.Warn().Err(err).Msg("invalid update prompt request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if errs := validate.UpdatePrompt(req.fields()); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	existing, err := h.store.GetPrompt(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err, "failed to get prompt")
		return
	}
	if !auth.CanModify(&user, existing.AuthorID) {
		h.forbid(w, user, "update", "you cannot modify this prompt")
		return
	}

	updated, err := h.store.UpdatePrompt(r.Context(), id, user.ID, func(p *prompt.Prompt) (db.Mutation, error) {
		changes := applyRequest(p, req)
		changelog := ""
		if req.Changelog != nil {
			changelog = *req.Changelog
		}
		return db.Mutation{
			Action:    prompt.ActionUpdate,
			Details:   map[string]any{"changes": changes, "changelog": changelog},
			Changelog: changelog,
		}, nil
	})
	if err != nil {
		h.storeError(w, r, err, "failed to update prompt")
		return
	}
	h.library.Invalidate()

	h.logger.Info().
		Str("prompt_id", id).
		Str("user_id", user.ID).
		Str("version", updated.Version).
		Msg("prompt updated")

	writeJSON(w, http.StatusOK, updated)
}

// HandleDeletePrompt soft deletes a prompt by deprecating it
func (h *Handler) HandleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := chi.URLParam(r, "id")

	existing, err := h.store.GetPrompt(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err, "failed to get prompt")
		return
	}
	if !auth.CanDelete(&user) {
		h.forbid(w, user, "delete", "you cannot delete prompts")
		return
	}

	_, err = h.store.UpdatePrompt(r.Context(), id, user.ID, func(p *prompt.Prompt) (db.Mutation, error) {
		deprecate(p)
		return db.Mutation{
			Action:  prompt.ActionDelete,
			Details: map[string]any{"title": existing.Title},
		}, nil
	})
	if err != nil {
		h.storeError(w, r, err, "failed to delete prompt")
		return
	}
	h.library.Invalidate()

	h.logger.Info().Str("prompt_id", id).Str("user_id", user.ID).Msg("prompt deleted")

	writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "prompt marked as deprecated"})
}

// HandleListVersions returns the version history of a prompt, newest first
func (h *Handler) HandleListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.store.ListVersions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, err, "failed to list versions")
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// applyRequest copies the present fields of req into p and returns their
// JSON names in a fixed order.
func applyRequest(p *prompt.Prompt, req PromptRequest) []string {
	changes := []string{}
	set := func(name string, present bool, apply func()) {
		if present {
			apply()
			changes = append(changes, name)
		}
	}

	set("title", req.Title != nil, func() { p.Title = *req.Title })
	set("description", req.Description != nil, func() { p.Description = *req.Description })
	set("body", req.Body != nil, func() { p.Body = *req.Body })
	set("category", req.Category != nil, func() { p.Category = *req.Category })
	set("tags", req.Tags != nil, func() { p.Tags = *req.Tags })
	set("variablesSchema", req.VariablesSchema != nil, func() { p.VariablesSchema = *req.VariablesSchema })
	set("outputFormat", req.OutputFormat != nil, func() { p.OutputFormat = *req.OutputFormat })
	set("examples", req.Examples != nil, func() { p.Examples = *req.Examples })
	set("riskLevel", req.RiskLevel != nil, func() { p.RiskLevel = *req.RiskLevel })
	set("changelog", req.Changelog != nil, func() { p.Changelog = *req.Changelog })
	set("isFavorite", req.IsFavorite != nil, func() { p.IsFavorite = *req.IsFavorite })

	p.EnsureCollections()
	return changes
}
