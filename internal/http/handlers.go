package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dsjohal14/promptlib/internal/library"
	"github.com/dsjohal14/promptlib/internal/libs/config"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/auth"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/validate"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request payloads.
const maxBodyBytes = 1 << 20

// Handler contains HTTP handlers for the API
type Handler struct {
	cfg     *config.Config
	store   db.Storage
	library *library.Library
	auth    *auth.Authenticator
	metrics *obs.Metrics
	logger  zerolog.Logger
}

// NewHandler creates a new HTTP handler. metrics may be nil.
func NewHandler(cfg *config.Config, store db.Storage, lib *library.Library, metrics *obs.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   store,
		library: lib,
		auth:    auth.NewAuthenticator(store, cfg.DevBypassAllowed()),
		metrics: metrics,
		logger:  logger,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeValidation writes a 400 with the per-field messages of errs
func writeValidation(w http.ResponseWriter, errs validate.Errors) {
	writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_FAILED",
		Details: errs,
	})
}

// internalError logs err under a fresh error id and returns that id to the
// client. The error text is only exposed in development.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	errorID := uuid.NewString()
	h.logger.Error().
		Err(err).
		Str("error_id", errorID).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg(message)

	resp := ErrorResponse{
		Error:   message,
		Code:    "INTERNAL",
		ErrorID: errorID,
	}
	if h.cfg.IsDev() {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// storeError maps storage sentinels to 404 and 409, anything else to 500
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, "already exists", "CONFLICT")
	default:
		h.internalError(w, r, err, message)
	}
}

// decodeJSON reads a size limited JSON body into v. An empty body is
// accepted when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// currentUser returns the user attached by requireUser
func currentUser(r *http.Request) prompt.User {
	u, _ := auth.UserFrom(r.Context())
	return u
}

// requireUser authenticates the request and stores the user in its context
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.auth.Authenticate(r.Context(), r)
		switch {
		case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
			h.logger.Warn().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("unauthenticated request")
			w.Header().Set("WWW-Authenticate", `Basic realm="promptlib"`)
			writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
			return
		case err != nil:
			h.internalError(w, r, err, "failed to authenticate")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
	})
}

// forbid writes a 403 and logs who was refused
func (h *Handler) forbid(w http.ResponseWriter, u prompt.User, action, message string) {
	h.logger.Warn().
		Str("user_id", u.ID).
		Str("role", string(u.Role)).
		Str("action", action).
		Msg("permission denied")
	writeError(w, http.StatusForbidden, message, "FORBIDDEN")
}
