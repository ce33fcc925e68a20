// internal/domain/models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetType classifies a stored media object.
type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
)

// RelatedModel names the kind of entity an Asset belongs to.
type RelatedModel string

const (
	RelatedAchievement RelatedModel = "Achievement"
	RelatedNeed        RelatedModel = "Need"
	RelatedUser        RelatedModel = "User"
)

// RelatedModels is the canonical list, used for schema validators.
var RelatedModels = []RelatedModel{RelatedAchievement, RelatedNeed, RelatedUser}

// Valid reports whether m is a known related model.
func (m RelatedModel) Valid() bool {
	switch m {
	case RelatedAchievement, RelatedNeed, RelatedUser:
		return true
	}
	return false
}

// Upload and attachment limits.
const (
	MaxFilesPerPost  = 10
	MaxVideosPerPost = 1

	// Achievement-only asset limits.
	MaxAchievementVideoSeconds = 60
	MaxAchievementAssetBytes   = 50 * 1024 * 1024
)

// Asset is a stored media file exclusively owned by its related entity.
type Asset struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	URL          string             `bson:"url" json:"url"`
	PublicID     string             `bson:"public_id" json:"public_id"` // storage key, used for deletion
	AssetType    AssetType          `bson:"asset_type" json:"asset_type"`
	RelatedModel RelatedModel       `bson:"related_model" json:"related_model"`
	RelatedID    primitive.ObjectID `bson:"related_id" json:"related_id"`
	Duration     *int               `bson:"duration,omitempty" json:"duration,omitempty"` // seconds, videos only
	Size         int64              `bson:"size,omitempty" json:"size,omitempty"`         // bytes

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
