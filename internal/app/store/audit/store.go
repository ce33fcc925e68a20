// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryModeration = "moderation" // admin decisions on posts
	CategoryContent    = "content"    // deletions and lifecycle changes
)

// Moderation event types
const (
	EventAchievementApproved = "achievement_approved"
	EventAchievementRejected = "achievement_rejected"
	EventNeedApproved        = "need_approved"
	EventNeedRejected        = "need_rejected"
)

// Content event types
const (
	EventNeedFulfilled      = "need_fulfilled"
	EventNeedsExpired       = "needs_expired"
	EventAchievementDeleted = "achievement_deleted"
	EventNeedDeleted        = "need_deleted"
	EventAssetDeleted       = "asset_deleted"
	EventUserAssetsPurged   = "user_assets_purged"
)

// Event is one recorded action against a post or asset.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// Who: ActorID is nil for system jobs; OwnerID is the affected user.
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	OwnerID *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`

	// What
	EntityModel string              `bson:"entity_model,omitempty" json:"entity_model,omitempty"`
	EntityID    *primitive.ObjectID `bson:"entity_id,omitempty" json:"entity_id,omitempty"`

	IP string `bson:"ip,omitempty" json:"ip,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter narrows a query. Zero fields are ignored.
type QueryFilter struct {
	EntityID  *primitive.ObjectID
	ActorID   *primitive.ObjectID
	OwnerID   *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
}

func (f QueryFilter) bson() bson.M {
	query := bson.M{}
	if f.EntityID != nil {
		query["entity_id"] = *f.EntityID
	}
	if f.ActorID != nil {
		query["actor_id"] = *f.ActorID
	}
	if f.OwnerID != nil {
		query["owner_id"] = *f.OwnerID
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.EventType != "" {
		query["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		timeQuery := bson.M{}
		if f.StartTime != nil {
			timeQuery["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			timeQuery["$lte"] = *f.EndTime
		}
		query["timestamp"] = timeQuery
	}
	return query
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns one page of events matching filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter, pg paging.Page) ([]Event, paging.Pagination, error) {
	cur, err := s.c.Find(ctx, filter.bson(), pg.FindOptions(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, paging.Pagination{}, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, paging.Pagination{}, err
	}
	return events, paging.Trim(&events, pg), nil
}

// ForEntity returns the full history of one post or asset, oldest first.
func (s *Store) ForEntity(ctx context.Context, id primitive.ObjectID) ([]Event, error) {
	cur, err := s.c.Find(ctx, bson.M{"entity_id": id},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the number of events matching filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.bson())
}
