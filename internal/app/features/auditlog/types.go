// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/bemyforce/bemyforce/internal/app/store/audit"
)

// listItem is one audit event with actor and owner names resolved.
type listItem struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Category    string            `json:"category"`
	EventType   string            `json:"event_type"`
	ActorID     string            `json:"actor_id,omitempty"`
	ActorName   string            `json:"actor_name,omitempty"`
	OwnerID     string            `json:"owner_id,omitempty"`
	OwnerName   string            `json:"owner_name,omitempty"`
	EntityModel string            `json:"entity_model,omitempty"`
	EntityID    string            `json:"entity_id,omitempty"`
	IP          string            `json:"ip,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// eventTypesForCategory returns the event types recorded under category.
// An empty category returns every type; an unknown one returns nil.
func eventTypesForCategory(category string) []string {
	moderation := []string{
		audit.EventAchievementApproved,
		audit.EventAchievementRejected,
		audit.EventNeedApproved,
		audit.EventNeedRejected,
	}
	content := []string{
		audit.EventNeedFulfilled,
		audit.EventNeedsExpired,
		audit.EventAchievementDeleted,
		audit.EventNeedDeleted,
		audit.EventAssetDeleted,
		audit.EventUserAssetsPurged,
	}

	switch category {
	case audit.CategoryModeration:
		return moderation
	case audit.CategoryContent:
		return content
	case "":
		return append(append([]string{}, moderation...), content...)
	default:
		return nil
	}
}

func validEventType(category, eventType string) bool {
	for _, t := range eventTypesForCategory(category) {
		if t == eventType {
			return true
		}
	}
	return false
}
