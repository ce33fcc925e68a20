// internal/app/features/assets/handler.go
package assets

import (
	"errors"
	"net/http"

	assetstore "github.com/bemyforce/bemyforce/internal/app/store/assets"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/attachments"
	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgNotFound = "Asset not found"

type Handler struct {
	Assets *assetstore.Store
	Attach *attachments.Service
	Audit  *auditlog.Logger // optional
	Resp   *respond.Responder
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, attach *attachments.Service, resp *respond.Responder, logger *zap.Logger) *Handler {
	return &Handler{Assets: assetstore.New(db), Attach: attach, Resp: resp, Log: logger}
}

// Routes mounts under /assets.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.Member).Delete("/{id}", h.HandleDelete)
	return r
}

// HandleDelete handles DELETE /assets/{id}. The stored object is removed
// before the record; the uploader or an admin may delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id", msgNotFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	actor, _ := authz.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "asset delete")
	defer cancel()

	a, err := h.Assets.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if !actor.Admin && a.User != actor.ID {
		h.Resp.Error(w, r, apierr.Forbidden("Not authorized to delete this asset"))
		return
	}

	if err := h.Attach.Delete(ctx, id); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Audit.AssetDeleted(ctx, r, actor.ID, a)
	h.Resp.OK(w, "Asset deleted successfully", nil)
}
