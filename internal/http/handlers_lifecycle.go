package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/auth"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/go-chi/chi/v5"
)

var errAlreadyPublished = errors.New("prompt is already published")

const defaultDeprecationReason = "Prompt deprecated"

// HandlePublish publishes a prompt with the current user as reviewer
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := chi.URLParam(r, "id")

	if !auth.HasRole(&user, prompt.RoleOwner, prompt.RoleEditor, prompt.RoleReviewer) {
		h.forbid(w, user, "publish", "you cannot publish prompts")
		return
	}

	published, err := h.store.UpdatePrompt(r.Context(), id, user.ID, func(p *prompt.Prompt) (db.Mutation, error) {
		if p.Status == prompt.StatusPublished {
			return db.Mutation{}, errAlreadyPublished
		}
		details := map[string]any{"previousStatus": p.Status, "version": p.Version}

		t := time.Now().UTC()
		p.Status = prompt.StatusPublished
		p.PublishedAt = &t
		p.ReviewerID = user.ID
		return db.Mutation{Action: prompt.ActionPublish, Details: details}, nil
	})
	if errors.Is(err, errAlreadyPublished) {
		writeError(w, http.StatusBadRequest, errAlreadyPublished.Error(), "ALREADY_PUBLISHED")
		return
	}
	if err != nil {
		h.storeError(w, r, err, "failed to publish prompt")
		return
	}
	h.library.Invalidate()

	h.logger.Info().Str("prompt_id", id).Str("reviewer_id", user.ID).Msg("prompt published")

	writeJSON(w, http.StatusOK, published)
}

// HandleDeprecate retires a prompt, recording the reason as its changelog
func (h *Handler) HandleDeprecate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := chi.URLParam(r, "id")

	var req DeprecateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	existing, err := h.store.GetPrompt(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err, "failed to get prompt")
		return
	}
	if !auth.CanModify(&user, existing.AuthorID) {
		h.forbid(w, user, "deprecate", "you cannot modify this prompt")
		return
	}

	deprecated, err := h.store.UpdatePrompt(r.Context(), id, user.ID, func(p *prompt.Prompt) (db.Mutation, error) {
		deprecate(p)
		p.Changelog = req.Reason
		if p.Changelog == "" {
			p.Changelog = defaultDeprecationReason
		}
		return db.Mutation{
			Action:  prompt.ActionDeprecate,
			Details: map[string]any{"reason": req.Reason},
		}, nil
	})
	if err != nil {
		h.storeError(w, r, err, "failed to deprecate prompt")
		return
	}
	h.library.Invalidate()

	h.logger.Info().Str("prompt_id", id).Str("user_id", user.ID).Msg("prompt deprecated")

	writeJSON(w, http.StatusOK, deprecated)
}

func deprecate(p *prompt.Prompt) {
	t := time.Now().UTC()
	p.Status = prompt.StatusDeprecated
	p.DeprecatedAt = &t
}
