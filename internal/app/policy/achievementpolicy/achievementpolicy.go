// internal/app/policy/achievementpolicy/achievementpolicy.go
package achievementpolicy

import (
	"strings"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/authz"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MsgNotPending is returned when moderating a post that is not pending.
const MsgNotPending = "Can only approve or reject pending achievements"

// CanView allows anyone to see an approved achievement; otherwise only the
// owner or an admin.
func CanView(a models.Achievement, actor authz.Actor) error {
	if a.Status == models.AchievementApproved || actor.Admin || a.User == actor.ID {
		return nil
	}
	return apierr.Forbidden("Not authorized to view this achievement")
}

// CanDelete allows the owner or an admin.
func CanDelete(a models.Achievement, actor authz.Actor) error {
	if actor.Admin || a.User == actor.ID {
		return nil
	}
	return apierr.Forbidden("Not authorized to delete this achievement")
}

// CheckApprovalRequest mirrors the Need moderation rules: admins only,
// target approved or rejected, rejection needs a reason.
func CheckApprovalRequest(actor authz.Actor, target models.AchievementStatus, reason string) error {
	if !actor.Admin {
		return apierr.Forbidden("Only administrators can approve or reject achievements")
	}
	if target != models.AchievementApproved && target != models.AchievementRejected {
		return apierr.Validation("Invalid approval status", "status")
	}
	if target == models.AchievementRejected && strings.TrimSpace(reason) == "" {
		return apierr.Validation("Rejection reason is required", "rejection_reason")
	}
	return nil
}

// CheckApprovable fails unless the achievement is still pending.
func CheckApprovable(a models.Achievement) error {
	if a.Status != models.AchievementPending {
		return apierr.StateConflict(MsgNotPending)
	}
	return nil
}

// ResolveListFilter returns the feed filter. Non-admins always see approved
// posts only, whatever they ask for; admins may filter by any status.
func ResolveListFilter(status string, admin bool) (bson.M, error) {
	if !admin {
		return bson.M{"status": string(models.AchievementApproved)}, nil
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return bson.M{}, nil
	}
	if !models.AchievementStatus(status).Valid() {
		return nil, apierr.Validation("Invalid achievement status", "status")
	}
	return bson.M{"status": status}, nil
}

// ListSort orders the Achievement feed newest first.
func ListSort() bson.D {
	return bson.D{{Key: "created_at", Value: -1}}
}
