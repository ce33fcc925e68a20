// internal/app/features/users/handler.go
package users

import (
	"net/http"

	"github.com/bemyforce/bemyforce/internal/app/system/attachments"
	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes admin maintenance on a user's content.
type Handler struct {
	Attach *attachments.Service
	Audit  *auditlog.Logger // optional
	Resp   *respond.Responder
	Log    *zap.Logger
}

func NewHandler(attach *attachments.Service, resp *respond.Responder, logger *zap.Logger) *Handler {
	return &Handler{Attach: attach, Resp: resp, Log: logger}
}

// Routes mounts under /users.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireRole("admin")).Delete("/{id}/assets", h.HandleDeleteAssets)
	return r
}

// HandleDeleteAssets handles DELETE /users/{id}/assets. A user with no
// assets is not an error.
func (h *Handler) HandleDeleteAssets(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id", "User not found")
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "user assets delete")
	defer cancel()

	n, err := h.Attach.DeleteForUser(ctx, id)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Log.Info("deleted user assets", zap.String("user_id", id.Hex()), zap.Int("count", n))
	if actor, ok := authz.CurrentActor(r); ok && n > 0 {
		h.Audit.UserAssetsPurged(ctx, r, actor.ID, id, n)
	}
	h.Resp.OK(w, "All user assets deleted successfully", map[string]int{"deleted": n})
}
