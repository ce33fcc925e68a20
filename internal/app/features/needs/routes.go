// internal/app/features/needs/routes.go
package needs

import (
	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/bemyforce/bemyforce/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the need API under whatever base path the caller
// chooses (typically "/needs"). limiter may be nil.
func Routes(h *Handler, sm *auth.SessionManager, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.Member)

		create := pr
		if limiter != nil {
			create = pr.With(limiter.Middleware(h.Resp))
		}
		create.Post("/", h.HandleCreate)

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeGet)
		pr.Patch("/{id}/fulfill", h.HandleFulfill)
		pr.Delete("/{id}", h.HandleDelete)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Patch("/{id}/approval", h.HandleApproval)
	})

	return r
}
