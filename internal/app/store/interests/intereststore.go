// internal/app/store/interests/intereststore.go
package intereststore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bemyforce/bemyforce/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateName = errors.New("an interest with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("interests")}
}

// Create inserts reference data. Used by seeding and tests.
func (s *Store) Create(ctx context.Context, name string) (models.Interest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Interest{}, mongo.CommandError{Message: "name is required"}
	}
	in := models.Interest{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, in); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Interest{}, ErrDuplicateName
		}
		return models.Interest{}, err
	}
	return in, nil
}

// List returns every interest sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Interest, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDs returns the interests for ids, keyed by id. Unknown ids are
// absent from the map.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Interest, error) {
	out := make(map[primitive.ObjectID]models.Interest, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Interest
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}
