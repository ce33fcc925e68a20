// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail under /audit. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin"))

		pr.Get("/", h.ServeList)
		pr.Get("/entity/{id}", h.ServeEntity)
	})

	return r
}
