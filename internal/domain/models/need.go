// internal/domain/models/need.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalStatus is the moderation axis of a Need.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalStatuses is the canonical list, used for schema validators.
var ApprovalStatuses = []ApprovalStatus{ApprovalPending, ApprovalApproved, ApprovalRejected}

// Valid reports whether s is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// NeedStatus is the fulfillment axis of a Need.
type NeedStatus string

const (
	NeedSearching NeedStatus = "searching"
	NeedFulfilled NeedStatus = "fulfilled"
	NeedExpired   NeedStatus = "expired"
)

// NeedStatuses is the canonical list, used for schema validators.
var NeedStatuses = []NeedStatus{NeedSearching, NeedFulfilled, NeedExpired}

// Valid reports whether s is a known fulfillment status.
func (s NeedStatus) Valid() bool {
	switch s {
	case NeedSearching, NeedFulfilled, NeedExpired:
		return true
	}
	return false
}

// Need is a user's request for help with a future event. Moderation
// (IsApproved) and fulfillment (Status) are independent axes.
type Need struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID   `bson:"user" json:"user"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"` // stringified editor JSON
	Interests   []primitive.ObjectID `bson:"interests" json:"interests"`
	EventDate   time.Time            `bson:"event_date" json:"event_date"`

	IsApproved      ApprovalStatus `bson:"is_approved" json:"is_approved"`
	Status          NeedStatus     `bson:"status" json:"status"`
	RejectionReason string         `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time     `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	FulfilledAt     *time.Time     `bson:"fulfilled_at,omitempty" json:"fulfilled_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NeedView is a Need with its relations populated.
type NeedView struct {
	Need `bson:",inline"`

	Owner         *UserSummary `json:"user"`
	InterestsFull []Interest   `json:"interests"`
	Assets        []Asset      `json:"assets"`
}
