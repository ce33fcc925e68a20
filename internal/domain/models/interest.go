// internal/domain/models/interest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interest is a tag from the fixed reference vocabulary shared by users and
// posts. Interests are seeded by operators and never edited by users.
type Interest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
