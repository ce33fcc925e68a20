// internal/app/features/achievements/approval.go
package achievements

import (
	"errors"
	"net/http"

	"github.com/bemyforce/bemyforce/internal/app/policy/achievementpolicy"
	achievementstore "github.com/bemyforce/bemyforce/internal/app/store/achievements"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/htmlsanitize"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type approvalInput struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

// HandleApproval handles PATCH /achievements/{id}/approval.
// Body: {"status": "approved"|"rejected", "rejection_reason": "..."}.
func (h *Handler) HandleApproval(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.CurrentActor(r)
	if !ok {
		h.Resp.Error(w, r, apierr.Unauthenticated())
		return
	}

	var in approvalInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	target := models.AchievementStatus(in.Status)
	reason := htmlsanitize.PlainText(in.RejectionReason)
	if err := achievementpolicy.CheckApprovalRequest(actor, target, reason); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	id, err := formutil.ObjectID(r, "id", msgNotFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "achievement approval")
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
	if err := achievementpolicy.CheckApprovable(a); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	updated, err := h.Achievements.SetStatus(ctx, id, target, reason)
	switch {
	case errors.Is(err, achievementstore.ErrNotPending):
		// Lost a race with another moderator.
		h.Resp.Error(w, r, apierr.StateConflict(achievementpolicy.MsgNotPending))
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	case err != nil:
		h.Resp.Error(w, r, err)
		return
	}

	h.Metrics.Transition("achievement", string(target))
	h.Log.Info("achievement moderated",
		zap.String("achievement_id", id.Hex()),
		zap.String("status", string(target)),
		zap.String("by", actor.ID.Hex()))
	h.Audit.AchievementModerated(ctx, r, actor.ID, updated)

	view, err := h.Feed.Achievement(ctx, updated)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.OK(w, "Achievement "+string(target)+" successfully", view)
}
