// internal/app/store/achievements/achievementstore.go
package achievementstore

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

// ErrNotPending is returned by SetStatus when the achievement exists but
// has already been moderated.
var ErrNotPending = errors.New("achievement is not pending")

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("achievements"),
		users: db.Collection("users"),
	}
}

// Create inserts a new Achievement in the pending state. The author's
// interests are read again here so a post can never reference an interest
// outside the profile, whatever the caller checked.
func (s *Store) Create(ctx context.Context, a models.Achievement) (models.Achievement, error) {
	now := time.Now().UTC()

	a.ID = primitive.NewObjectID()
	a.Title = strings.TrimSpace(a.Title)
	a.Status = models.AchievementPending
	a.RejectionReason = ""
	a.ApprovedAt = nil
	a.LikesCount = 0
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Description.Blocks == nil {
		a.Description.Blocks = []map[string]any{}
	}

	if a.User.IsZero() {
		return models.Achievement{}, mongo.CommandError{Message: "user is required"}
	}
	if a.Title == "" {
		return models.Achievement{}, mongo.CommandError{Message: "title is required"}
	}
	if utf8.RuneCountInString(a.Title) > models.TitleMaxLen {
		return models.Achievement{}, mongo.CommandError{Message: "title must be at most 200 characters"}
	}
	if len(a.Interests) == 0 {
		return models.Achievement{}, mongo.CommandError{Message: "interests: at least one interest is required"}
	}
	if err := s.checkInterests(ctx, a.User, a.Interests); err != nil {
		return models.Achievement{}, err
	}

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Achievement{}, err
	}
	return a, nil
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

// GetByID returns an achievement by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Achievement, error) {
	var a models.Achievement
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Achievement{}, err
	}
	return a, nil
}

// Find returns one page of achievements matching filter, newest first.
func (s *Store) Find(ctx context.Context, filter bson.M, pg paging.Page, sort bson.D) ([]models.Achievement, paging.Pagination, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.c.Find(ctx, filter, pg.FindOptions(sort))
	if err != nil {
		return nil, paging.Pagination{}, err
	}
	defer cur.Close(ctx)

	rows := []models.Achievement{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Pagination{}, err
	}
	return rows, paging.Trim(&rows, pg), nil
}

// SetStatus moves a pending achievement to approved or rejected in one
// conditional write. approved_at is set whenever the new status is
// approved. Returns mongo.ErrNoDocuments when id does not exist and
// ErrNotPending when it was already moderated.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, st models.AchievementStatus, reason string) (models.Achievement, error) {
	now := time.Now().UTC()
	reason = strings.TrimSpace(reason)

	set := bson.M{"status": st, "updated_at": now}
	unset := bson.M{}
	switch st {
	case models.AchievementApproved:
		set["approved_at"] = now
		unset["rejection_reason"] = ""
	case models.AchievementRejected:
		if reason == "" {
			return models.Achievement{}, mongo.CommandError{Message: "rejection_reason is required when rejected"}
		}
		set["rejection_reason"] = reason
	default:
		return models.Achievement{}, mongo.CommandError{Message: "status must be 'approved' or 'rejected'"}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var out models.Achievement
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.AchievementPending},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err == mongo.ErrNoDocuments {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return models.Achievement{}, gerr
		}
		return models.Achievement{}, ErrNotPending
	}
	if err != nil {
		return models.Achievement{}, err
	}
	return out, nil
}

// Delete removes an achievement by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
