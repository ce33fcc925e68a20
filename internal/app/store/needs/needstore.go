// internal/app/store/needs/needstore.go
package needstore

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bemyforce/bemyforce/internal/app/policy/interestpolicy"
	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotPending is returned by SetApproval when the need was already moderated.
	ErrNotPending = errors.New("need is not pending approval")
	// ErrNotFulfillable is returned by MarkFulfilled when the need is not
	// approved and searching.
	ErrNotFulfillable = errors.New("need is not approved and searching")
)

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("needs"),
		users: db.Collection("users"),
	}
}

// Create inserts a new Need awaiting approval and searching. event_date is
// validated by the caller against the request time and not checked again.
func (s *Store) Create(ctx context.Context, n models.Need) (models.Need, error) {
	now := time.Now().UTC()

	n.ID = primitive.NewObjectID()
	n.Title = strings.TrimSpace(n.Title)
	n.IsApproved = models.ApprovalPending
	n.Status = models.NeedSearching
	n.RejectionReason = ""
	n.ApprovedAt = nil
	n.FulfilledAt = nil
	n.EventDate = n.EventDate.UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	if n.User.IsZero() {
		return models.Need{}, mongo.CommandError{Message: "user is required"}
	}
	if n.Title == "" {
		return models.Need{}, mongo.CommandError{Message: "title is required"}
	}
	if utf8.RuneCountInString(n.Title) > models.TitleMaxLen {
		return models.Need{}, mongo.CommandError{Message: "title must be at most 200 characters"}
	}
	if strings.TrimSpace(n.Description) == "" {
		return models.Need{}, mongo.CommandError{Message: "description is required"}
	}
	if n.EventDate.IsZero() {
		return models.Need{}, mongo.CommandError{Message: "event_date is required"}
	}
	if len(n.Interests) == 0 {
		return models.Need{}, mongo.CommandError{Message: "interests: at least one interest is required"}
	}
	if err := s.checkInterests(ctx, n.User, n.Interests); err != nil {
		return models.Need{}, err
	}

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Need{}, err
	}
	return n, nil
}

func (s *Store) checkInterests(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	var u struct {
		Interests []primitive.ObjectID `bson:"interests"`
	}
	proj := options.FindOne().SetProjection(bson.M{"interests": 1})
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return mongo.CommandError{Message: "user: author does not exist"}
		}
		return err
	}
	if len(interestpolicy.Missing(u.Interests, ids)) > 0 {
		return mongo.CommandError{Message: "interests: some interests are not in the user's interest list"}
	}
	return nil
}

// GetByID returns a need by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Need, error) {
	var n models.Need
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return models.Need{}, err
	}
	return n, nil
}

// Find returns one page of needs matching filter.
func (s *Store) Find(ctx context.Context, filter bson.M, pg paging.Page, sort bson.D) ([]models.Need, paging.Pagination, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.c.Find(ctx, filter, pg.FindOptions(sort))
	if err != nil {
		return nil, paging.Pagination{}, err
	}
	defer cur.Close(ctx)

	rows := []models.Need{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Pagination{}, err
	}
	return rows, paging.Trim(&rows, pg), nil
}

// SetApproval moves the approval axis from pending to approved or rejected.
// The fulfillment axis is untouched. Returns mongo.ErrNoDocuments when id
// does not exist and ErrNotPending when it was already moderated.
func (s *Store) SetApproval(ctx context.Context, id primitive.ObjectID, to models.ApprovalStatus, reason string) (models.Need, error) {
	now := time.Now().UTC()
	reason = strings.TrimSpace(reason)

	set := bson.M{"is_approved": to, "updated_at": now}
	switch to {
	case models.ApprovalApproved:
		set["approved_at"] = now
	case models.ApprovalRejected:
		if reason == "" {
			return models.Need{}, mongo.CommandError{Message: "rejection_reason is required when rejected"}
		}
		set["rejection_reason"] = reason
	default:
		return models.Need{}, mongo.CommandError{Message: "is_approved must be 'approved' or 'rejected'"}
	}

	return s.transition(ctx,
		bson.M{"_id": id, "is_approved": models.ApprovalPending},
		bson.M{"$set": set},
		ErrNotPending,
	)
}

// MarkFulfilled moves the fulfillment axis from searching to fulfilled for
// an approved need. fulfilled_at is left unset.
func (s *Store) MarkFulfilled(ctx context.Context, id primitive.ObjectID) (models.Need, error) {
	return s.transition(ctx,
		bson.M{"_id": id, "is_approved": models.ApprovalApproved, "status": models.NeedSearching},
		bson.M{"$set": bson.M{"status": models.NeedFulfilled, "updated_at": time.Now().UTC()}},
		ErrNotFulfillable,
	)
}

// transition applies update only when filter still matches, so a guard
// read earlier cannot be invalidated by a concurrent write.
func (s *Store) transition(ctx context.Context, filter, update bson.M, conflict error) (models.Need, error) {
	var out models.Need
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == mongo.ErrNoDocuments {
		if _, gerr := s.GetByID(ctx, filter["_id"].(primitive.ObjectID)); gerr != nil {
			return models.Need{}, gerr
		}
		return models.Need{}, conflict
	}
	if err != nil {
		return models.Need{}, err
	}
	return out, nil
}

// ExpirePast sets status=expired on every approved, searching need whose
// event_date is before now. Returns the number of needs changed.
func (s *Store) ExpirePast(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"is_approved": models.ApprovalApproved,
			"status":      models.NeedSearching,
			"event_date":  bson.M{"$lt": now.UTC()},
		},
		bson.M{"$set": bson.M{"status": models.NeedExpired, "updated_at": now.UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a need by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
