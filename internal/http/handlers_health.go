package httpapi

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// HandleHealth reports whether the store is reachable
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	now := time.Now().UTC()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		resp := HealthResponse{
			Status:    "error",
			Database:  false,
			Error:     "database unreachable",
			Timestamp: now,
		}
		if h.cfg.IsDev() {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	h.logger.Debug().Msg("health check")

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Database:  true,
		Timestamp: now,
	})
}
