// internal/app/features/achievements/routes.go
package achievements

import (
	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/bemyforce/bemyforce/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the achievement API. limiter may be nil.
//
//	r.Mount("/achievements", achievements.Routes(h, sessionMgr, uploadLimiter))
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
		pr.Delete("/{id}", h.HandleDelete)
	})

	// Moderation checks the admin role itself so non-admins get the
	// moderation-specific message.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Patch("/{id}/approval", h.HandleApproval)
	})

	return r
}
