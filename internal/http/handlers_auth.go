package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dsjohal14/promptlib/internal/scope/auth"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/validate"
)

// HandleSignup creates an account with the user role
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if errs := validate.Signup(req.Email, req.Password, req.Name); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, r, err, "failed to create account")
		return
	}

	user, err := h.store.CreateUser(r.Context(), prompt.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         prompt.RoleUser,
		PasswordHash: hash,
	})
	if errors.Is(err, db.ErrConflict) {
		writeError(w, http.StatusConflict, "An account with this email already exists", "EMAIL_TAKEN")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "failed to create account")
		return
	}

	h.logger.Info().Str("user_id", user.ID).Msg("account created")

	writeJSON(w, http.StatusCreated, SignupResponse{Success: true, User: user})
}

// HandleCurrentUser returns the authenticated user
func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}
