// internal/domain/models/achievement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AchievementStatus is the moderation state of an Achievement.
type AchievementStatus string

const (
	AchievementPending  AchievementStatus = "pending"
	AchievementApproved AchievementStatus = "approved"
	AchievementRejected AchievementStatus = "rejected"
)

// AchievementStatuses is the canonical list, used for schema validators.
var AchievementStatuses = []AchievementStatus{AchievementPending, AchievementApproved, AchievementRejected}

// Valid reports whether s is a known status.
func (s AchievementStatus) Valid() bool {
	switch s {
	case AchievementPending, AchievementApproved, AchievementRejected:
		return true
	}
	return false
}

// TitleMaxLen bounds the title of both Achievements and Needs.
const TitleMaxLen = 200

// RichText is block-structured editor content.
type RichText struct {
	Blocks  []map[string]any `bson:"blocks" json:"blocks"`
	Time    int64            `bson:"time,omitempty" json:"time,omitempty"`
	Version string           `bson:"version,omitempty" json:"version,omitempty"`
}

// Achievement is a user post describing an accomplishment. It becomes
// visible to other users only once approved by an administrator.
type Achievement struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID   `bson:"user" json:"user"`
	Title       string               `bson:"title" json:"title"`
	Description RichText             `bson:"description" json:"description"`
	Interests   []primitive.ObjectID `bson:"interests" json:"interests"`
	LikesCount  int64                `bson:"likes_count" json:"likes_count"`

	Status          AchievementStatus `bson:"status" json:"status"`
	RejectionReason string            `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time        `bson:"approved_at,omitempty" json:"approved_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AchievementView is an Achievement with its relations populated.
type AchievementView struct {
	Achievement `bson:",inline"`

	Owner         *UserSummary `json:"user"`
	InterestsFull []Interest   `json:"interests"`
	Assets        []Asset      `json:"assets"`
}
