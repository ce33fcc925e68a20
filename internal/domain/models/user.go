// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Accounts are created and authenticated by
// the identity service; this service only reads them, with the exception of
// asset cleanup when an account is removed.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FullName     string               `bson:"full_name" json:"full_name"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	ProfileImage string               `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	Role         string               `bson:"role" json:"role"` // user | admin
	Status       string               `bson:"status,omitempty" json:"status,omitempty"`
	Interests    []primitive.ObjectID `bson:"interests" json:"interests"`

	EmailVerified bool `bson:"email_verified" json:"email_verified"`
	Onboarded     bool `bson:"is_onboarded" json:"is_onboarded"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the owner projection embedded in feed responses.
type UserSummary struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	Username     string             `bson:"username" json:"username"`
	ProfileImage string             `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
}
