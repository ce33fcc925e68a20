// internal/app/features/achievements/delete.go
package achievements

import (
	"errors"
	"net/http"

	"github.com/bemyforce/bemyforce/internal/app/policy/achievementpolicy"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleDelete handles DELETE /achievements/{id}. Attached files are
// removed first; the post is deleted only once they are gone.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id", msgNotFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	actor, _ := authz.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "achievement delete")
	defer cancel()

	a, err := h.Achievements.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if err := achievementpolicy.CanDelete(a, actor); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	if err := h.Attach.DeleteForEntity(ctx, models.RelatedAchievement, a.ID); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if _, err := h.Achievements.Delete(ctx, a.ID); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Audit.PostDeleted(ctx, r, actor.ID, a.User, models.RelatedAchievement, a.ID)
	h.Resp.OK(w, "Achievement deleted successfully", nil)
}
