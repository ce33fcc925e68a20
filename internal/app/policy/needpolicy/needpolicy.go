// internal/app/policy/needpolicy/needpolicy.go
//
// Package needpolicy holds the transition guards of the two Need state
// axes and the default resolution for Need list queries. Everything here
// is pure; stores apply the guards again as conditional updates.
package needpolicy

import (
	"strings"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Approval request messages.
const (
	MsgAdminOnly       = "Only administrators can approve or reject needs"
	MsgInvalidApproval = "Invalid approval status"
	MsgReasonRequired  = "Rejection reason is required"
	MsgNotPending      = "Can only approve or reject pending needs"
	MsgCreatorOnly     = "Only the creator can mark a need as fulfilled"
	MsgNotFulfillable  = "Only approved and searching needs can be marked as fulfilled"
)

// CheckApprovalRequest validates who asks and what they ask for, before the
// need is loaded. Only approved and rejected are valid targets.
func CheckApprovalRequest(actor authz.Actor, target models.ApprovalStatus, reason string) error {
	if !actor.Admin {
		return apierr.Forbidden(MsgAdminOnly)
	}
	if target != models.ApprovalApproved && target != models.ApprovalRejected {
		return apierr.Validation(MsgInvalidApproval, "is_approved")
	}
	if target == models.ApprovalRejected && strings.TrimSpace(reason) == "" {
		return apierr.Validation(MsgReasonRequired, "rejection_reason")
	}
	return nil
}

// CheckApprovable fails unless the need is still awaiting moderation.
func CheckApprovable(n models.Need) error {
	if n.IsApproved != models.ApprovalPending {
		return apierr.StateConflict(MsgNotPending)
	}
	return nil
}

// CanFulfill checks that actor owns the need and that the need is approved
// and still searching.
func CanFulfill(n models.Need, actor authz.Actor) error {
	if n.User != actor.ID {
		return apierr.Forbidden(MsgCreatorOnly)
	}
	if !Fulfillable(n) {
		return apierr.StateConflict(MsgNotFulfillable)
	}
	return nil
}

// Fulfillable reports whether the fulfillment transition is legal from the
// need's current state pair.
func Fulfillable(n models.Need) bool {
	return n.IsApproved == models.ApprovalApproved && n.Status == models.NeedSearching
}

// CanDelete allows the owner or an admin.
func CanDelete(n models.Need, actor authz.Actor) error {
	if actor.Admin || n.User == actor.ID {
		return nil
	}
	return apierr.Forbidden("Not authorized to delete this need")
}

// ListQuery is the raw filter a client sent. Empty strings mean "not given".
type ListQuery struct {
	IsApproved string
	Status     string
}

// ResolveListFilter turns a client query into the Mongo filter for the
// Need feed:
//   - is_approved: as given; otherwise approved for non-admins, any for admins
//   - status: as given; otherwise searching with event_date after now
func ResolveListFilter(q ListQuery, admin bool, now time.Time) (bson.M, error) {
	filter := bson.M{}

	approval := strings.ToLower(strings.TrimSpace(q.IsApproved))
	switch {
	case approval != "":
		if !models.ApprovalStatus(approval).Valid() {
			return nil, apierr.Validation(MsgInvalidApproval, "is_approved")
		}
		filter["is_approved"] = approval
	case !admin:
		filter["is_approved"] = string(models.ApprovalApproved)
	}

	status := strings.ToLower(strings.TrimSpace(q.Status))
	if status != "" {
		if !models.NeedStatus(status).Valid() {
			return nil, apierr.Validation("Invalid need status", "status")
		}
		filter["status"] = status
	} else {
		filter["status"] = string(models.NeedSearching)
		filter["event_date"] = bson.M{"$gt": now.UTC()}
	}

	return filter, nil
}

// ListSort orders the Need feed by soonest event first.
func ListSort() bson.D {
	return bson.D{{Key: "event_date", Value: 1}}
}
