// internal/app/store/assets/assetstore.go
package assetstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Achievement attachment limits.
var (
	ErrVideoTooLong      = errors.New("Video duration must not exceed 60 seconds for achievements")
	ErrTotalSizeExceeded = errors.New("Total size of achievement assets cannot exceed 50MB")
	ErrTooManyVideos     = errors.New("Only one video is allowed per achievement")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assets")}
}

// InsertOne persists a single asset record.
func (s *Store) InsertOne(ctx context.Context, a models.Asset) (models.Asset, error) {
	out, err := s.InsertMany(ctx, []models.Asset{a})
	if err != nil {
		return models.Asset{}, err
	}
	return out[0], nil
}

// InsertMany persists assets in one bulk write. Assets attached to an
// Achievement are checked against the records already stored for it.
//
// The check reads existing assets and then writes; two concurrent batches
// for one achievement can both pass and jointly exceed the caps.
func (s *Store) InsertMany(ctx context.Context, in []models.Asset) ([]models.Asset, error) {
	if len(in) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	docs := make([]any, len(in))
	out := make([]models.Asset, len(in))
	for i, a := range in {
		if err := validate(a); err != nil {
			return nil, err
		}
		a.ID = primitive.NewObjectID()
		if a.AssetType != models.AssetVideo {
			a.Duration = nil
		}
		a.CreatedAt = now
		a.UpdatedAt = now
		out[i] = a
		docs[i] = a
	}

	if err := s.checkAchievementLimits(ctx, out); err != nil {
		return nil, err
	}

	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(a models.Asset) error {
	switch {
	case a.User.IsZero():
		return mongo.CommandError{Message: "user is required"}
	case strings.TrimSpace(a.URL) == "":
		return mongo.CommandError{Message: "url is required"}
	case strings.TrimSpace(a.PublicID) == "":
		return mongo.CommandError{Message: "public_id is required"}
	case a.AssetType != models.AssetImage && a.AssetType != models.AssetVideo:
		return mongo.CommandError{Message: "asset_type must be 'image' or 'video'"}
	case !a.RelatedModel.Valid():
		return mongo.CommandError{Message: "related_model must be 'Achievement', 'Need' or 'User'"}
	case a.RelatedID.IsZero():
		return mongo.CommandError{Message: "related_id is required"}
	}
	return nil
}

func (s *Store) checkAchievementLimits(ctx context.Context, batch []models.Asset) error {
	type tally struct {
		size   int64
		videos int
	}
	incoming := map[primitive.ObjectID]*tally{}
	for _, a := range batch {
		if a.RelatedModel != models.RelatedAchievement {
			continue
		}
		if a.AssetType == models.AssetVideo && a.Duration != nil && *a.Duration > models.MaxAchievementVideoSeconds {
			return ErrVideoTooLong
		}
		t := incoming[a.RelatedID]
		if t == nil {
			t = &tally{}
			incoming[a.RelatedID] = t
		}
		t.size += a.Size
		if a.AssetType == models.AssetVideo {
			t.videos++
		}
	}

	for id, t := range incoming {
		existing, err := s.ByRelated(ctx, models.RelatedAchievement, id)
		if err != nil {
			return err
		}
		size, videos := t.size, t.videos
		for _, e := range existing {
			size += e.Size
			if e.AssetType == models.AssetVideo {
				videos++
			}
		}
		if size > models.MaxAchievementAssetBytes {
			return ErrTotalSizeExceeded
		}
		if videos > models.MaxVideosPerPost {
			return ErrTooManyVideos
		}
	}
	return nil
}

// GetByID returns an asset by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Asset, error) {
	var a models.Asset
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

// ByRelated returns the assets attached to one entity, oldest first.
func (s *Store) ByRelated(ctx context.Context, model models.RelatedModel, id primitive.ObjectID) ([]models.Asset, error) {
	return s.find(ctx, bson.M{"related_model": model, "related_id": id})
}

// ByRelatedIDs returns the assets attached to any of ids, grouped by
// related id. Used to populate feed pages in one query.
func (s *Store) ByRelatedIDs(ctx context.Context, model models.RelatedModel, ids []primitive.ObjectID) (map[primitive.ObjectID][]models.Asset, error) {
	out := make(map[primitive.ObjectID][]models.Asset, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.find(ctx, bson.M{"related_model": model, "related_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, a := range rows {
		out[a.RelatedID] = append(out[a.RelatedID], a)
	}
	return out, nil
}

// ByUser returns every asset uploaded by a user.
func (s *Store) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Asset, error) {
	return s.find(ctx, bson.M{"user": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Asset, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Asset{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID removes one asset record. Returns the number deleted (0 or 1).
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByIDs removes the given asset records.
func (s *Store) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes every asset record of a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByRelated removes every asset record attached to one entity.
func (s *Store) DeleteByRelated(ctx context.Context, model models.RelatedModel, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"related_model": model, "related_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
