package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/dsjohal14/promptlib/internal/scope/seed"
)

// AdminSecretHeader carries ADMIN_SECRET outside development.
const AdminSecretHeader = "X-Admin-Secret"

// HandleSeed loads the seed fixture into the store. Outside development the
// request must carry the admin secret.
func (h *Handler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	if !h.seedAllowed(r) {
		h.logger.Warn().Str("env", h.cfg.Env).Msg("seed refused")
		writeError(w, http.StatusForbidden, "seeding is not allowed", "FORBIDDEN")
		return
	}

	fixture, err := seed.Load(h.cfg.SeedFile)
	if err != nil {
		h.internalError(w, r, err, "failed to load seed fixture")
		return
	}

	result, err := seed.Apply(r.Context(), h.store, fixture)
	if err != nil {
		h.internalError(w, r, err, "failed to seed store")
		return
	}
	h.library.Invalidate()

	h.logger.Info().
		Int("users", result.UsersCreated).
		Int("categories", result.CategoriesCreated).
		Int("prompts", result.PromptsCreated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("store seeded")

	writeJSON(w, http.StatusOK, SeedResponse{Success: true, Result: result})
}

func (h *Handler) seedAllowed(r *http.Request) bool {
	if h.cfg.IsDev() {
		return true
	}
	secret := r.Header.Get(AdminSecretHeader)
	return h.cfg.AdminSecret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.AdminSecret)) == 1
}
