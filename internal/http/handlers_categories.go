package httpapi

import (
	"net/http"
	"strings"

	"github.com/dsjohal14/promptlib/internal/scope/auth"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/validate"
)

// HandleListCategories lists categories with their published prompt counts
func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.internalError(w, r, err, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleCreateCategory adds a category. Owners and editors only.
func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !auth.HasRole(&user, prompt.RoleOwner, prompt.RoleEditor) {
		h.forbid(w, user, "create category", "you cannot create categories")
		return
	}

	var req CategoryRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if errs := validate.Category(req.Name, req.Description); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	created, err := h.store.CreateCategory(r.Context(), prompt.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Order:       req.Order,
	})
	if err != nil {
		h.storeError(w, r, err, "failed to create category")
		return
	}
	h.library.Invalidate()

	h.logger.Info().Str("category", created.Name).Str("user_id", user.ID).Msg("category created")

	writeJSON(w, http.StatusCreated, created)
}
