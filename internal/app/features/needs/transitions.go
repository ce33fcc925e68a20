// internal/app/features/needs/transitions.go
package needs

import (
	"errors"
	"net/http"

	"github.com/bemyforce/bemyforce/internal/app/policy/needpolicy"
	needstore "github.com/bemyforce/bemyforce/internal/app/store/needs"
	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/app/system/formutil"
	"github.com/bemyforce/bemyforce/internal/app/system/htmlsanitize"
	"github.com/bemyforce/bemyforce/internal/app/system/timeouts"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgNotFound = "Need not found"

type approvalInput struct {
	IsApproved      string `json:"is_approved"`
	RejectionReason string `json:"rejection_reason"`
}

// HandleApproval handles PATCH /needs/{id}/approval.
// Body: {"is_approved": "approved"|"rejected", "rejection_reason": "..."}.
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
	target := models.ApprovalStatus(in.IsApproved)
	reason := htmlsanitize.PlainText(in.RejectionReason)
	if err := needpolicy.CheckApprovalRequest(actor, target, reason); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	id, err := formutil.ObjectID(r, "id", msgNotFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "need approval")
	defer cancel()

	n, err := h.Needs.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if err := needpolicy.CheckApprovable(n); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	updated, err := h.Needs.SetApproval(ctx, id, target, reason)
	switch {
	case errors.Is(err, needstore.ErrNotPending):
		h.Resp.Error(w, r, apierr.StateConflict(needpolicy.MsgNotPending))
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	case err != nil:
		h.Resp.Error(w, r, err)
		return
	}

	h.Metrics.Transition("need", string(target))
	h.Log.Info("need moderated",
		zap.String("need_id", id.Hex()),
		zap.String("is_approved", string(target)),
		zap.String("by", actor.ID.Hex()))
	h.Audit.NeedModerated(ctx, r, actor.ID, updated)

	view, err := h.Feed.Need(ctx, updated)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.OK(w, "Need "+string(target)+" successfully", view)
}

// HandleFulfill handles PATCH /needs/{id}/fulfill. Only the creator may
// close an approved, searching need. The response carries the populated
// need, as GET does.
func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id", msgNotFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	actor, _ := authz.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "need fulfill")
	defer cancel()

	n, err := h.Needs.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if err := needpolicy.CanFulfill(n, actor); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	updated, err := h.Needs.MarkFulfilled(ctx, id)
	switch {
	case errors.Is(err, needstore.ErrNotFulfillable):
		// The sweep or a second request got there first.
		h.Resp.Error(w, r, apierr.StateConflict(needpolicy.MsgNotFulfillable))
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	case err != nil:
		h.Resp.Error(w, r, err)
		return
	}

	h.Metrics.Transition("need", string(models.NeedFulfilled))
	h.Audit.NeedFulfilled(ctx, r, updated)

	view, err := h.Feed.Need(ctx, updated)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Resp.OK(w, "Need marked as fulfilled successfully", view)
}

// HandleDelete handles DELETE /needs/{id} for the owner or an admin.
// Attached files go first, then the need.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id", msgNotFound)
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	actor, _ := authz.CurrentActor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "need delete")
	defer cancel()

	n, err := h.Needs.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Resp.Error(w, r, apierr.NotFound(msgNotFound))
		return
	}
	if err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if err := needpolicy.CanDelete(n, actor); err != nil {
		h.Resp.Error(w, r, err)
		return
	}

	if err := h.Attach.DeleteForEntity(ctx, models.RelatedNeed, n.ID); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	if _, err := h.Needs.Delete(ctx, n.ID); err != nil {
		h.Resp.Error(w, r, err)
		return
	}
	h.Audit.PostDeleted(ctx, r, actor.ID, n.User, models.RelatedNeed, n.ID)
	h.Resp.OK(w, "Need deleted successfully", nil)
}
