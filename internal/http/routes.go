package httpapi

import (
	"github.com/dsjohal14/promptlib/internal/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts every endpoint on r. Middleware shared by all routes must
// already be registered on r.
func (h *Handler) Routes(r chi.Router, limiter *ratelimit.Limiter) {
	strict := limiter.Middleware(ratelimit.Strict)
	standard := limiter.Middleware(ratelimit.Standard)
	relaxed := limiter.Middleware(ratelimit.Relaxed)

	r.Get("/health", h.HandleHealth)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}

	r.Route("/prompts", func(r chi.Router) {
		r.With(relaxed).Get("/", h.HandleListPrompts)
		r.With(standard, h.requireUser).Post("/", h.HandleCreatePrompt)
		r.With(relaxed).Post("/search", h.HandleSearch)
		r.With(standard).Post("/analyze", h.HandleAnalyze)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetPrompt)
			r.With(standard, h.requireUser).Put("/", h.HandleUpdatePrompt)
			r.With(strict, h.requireUser).Delete("/", h.HandleDeletePrompt)
			r.Get("/versions", h.HandleListVersions)
			r.Get("/feedback", h.HandleListFeedback)
			r.With(standard, h.requireUser).Post("/feedback", h.HandleRecordFeedback)
			r.With(standard, h.requireUser).Post("/publish", h.HandlePublish)
			r.With(standard, h.requireUser).Post("/deprecate", h.HandleDeprecate)
		})
	})

	r.With(relaxed).Get("/tags", h.HandleTags)
	r.Get("/categories", h.HandleListCategories)
	r.With(standard, h.requireUser).Post("/categories", h.HandleCreateCategory)
	r.Get("/stats", h.HandleStats)
	r.With(standard).Post("/pii", h.HandlePII)

	r.With(strict).Post("/auth/signup", h.HandleSignup)
	r.With(h.requireUser).Get("/user", h.HandleCurrentUser)
	r.With(strict).Post("/admin/seed", h.HandleSeed)
}
