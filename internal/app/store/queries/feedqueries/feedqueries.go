// Package feedqueries populates feed rows with their owner summary,
// interests and assets. Each relation is loaded with one $in query per
// page, never per row.
package feedqueries

import (
	"context"

	assetstore "github.com/bemyforce/bemyforce/internal/app/store/assets"
	intereststore "github.com/bemyforce/bemyforce/internal/app/store/interests"
	userstore "github.com/bemyforce/bemyforce/internal/app/store/users"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Populator joins feed rows with their relations.
type Populator struct {
	users     *userstore.Store
	interests *intereststore.Store
	assets    *assetstore.Store
}

func New(db *mongo.Database) *Populator {
	return &Populator{
		users:     userstore.New(db),
		interests: intereststore.New(db),
		assets:    assetstore.New(db),
	}
}

type relations struct {
	owners    map[primitive.ObjectID]models.UserSummary
	interests map[primitive.ObjectID]models.Interest
	assets    map[primitive.ObjectID][]models.Asset
}

func (p *Populator) load(ctx context.Context, model models.RelatedModel, ids, owners, interests []primitive.ObjectID) (relations, error) {
	var rel relations
	var err error
	if rel.owners, err = p.users.Summaries(ctx, unique(owners)); err != nil {
		return rel, err
	}
	if rel.interests, err = p.interests.GetByIDs(ctx, unique(interests)); err != nil {
		return rel, err
	}
	if rel.assets, err = p.assets.ByRelatedIDs(ctx, model, ids); err != nil {
		return rel, err
	}
	return rel, nil
}

func (rel relations) owner(id primitive.ObjectID) *models.UserSummary {
	if s, ok := rel.owners[id]; ok {
		return &s
	}
	return nil
}

func (rel relations) interestList(ids []primitive.ObjectID) []models.Interest {
	out := make([]models.Interest, 0, len(ids))
	for _, id := range ids {
		if in, ok := rel.interests[id]; ok {
			out = append(out, in)
		}
	}
	return out
}

func (rel relations) assetList(id primitive.ObjectID) []models.Asset {
	if a := rel.assets[id]; a != nil {
		return a
	}
	return []models.Asset{}
}

// Achievements returns rows populated, in the same order.
func (p *Populator) Achievements(ctx context.Context, rows []models.Achievement) ([]models.AchievementView, error) {
	ids := make([]primitive.ObjectID, len(rows))
	owners := make([]primitive.ObjectID, len(rows))
	var interests []primitive.ObjectID
	for i, a := range rows {
		ids[i] = a.ID
		owners[i] = a.User
		interests = append(interests, a.Interests...)
	}

	rel, err := p.load(ctx, models.RelatedAchievement, ids, owners, interests)
	if err != nil {
		return nil, err
	}

	out := make([]models.AchievementView, len(rows))
	for i, a := range rows {
		out[i] = models.AchievementView{
			Achievement:   a,
			Owner:         rel.owner(a.User),
			InterestsFull: rel.interestList(a.Interests),
			Assets:        rel.assetList(a.ID),
		}
	}
	return out, nil
}

// Achievement populates a single row.
func (p *Populator) Achievement(ctx context.Context, a models.Achievement) (models.AchievementView, error) {
	out, err := p.Achievements(ctx, []models.Achievement{a})
	if err != nil {
		return models.AchievementView{}, err
	}
	return out[0], nil
}

// Needs returns rows populated, in the same order.
func (p *Populator) Needs(ctx context.Context, rows []models.Need) ([]models.NeedView, error) {
	ids := make([]primitive.ObjectID, len(rows))
	owners := make([]primitive.ObjectID, len(rows))
	var interests []primitive.ObjectID
	for i, n := range rows {
		ids[i] = n.ID
		owners[i] = n.User
		interests = append(interests, n.Interests...)
	}

	rel, err := p.load(ctx, models.RelatedNeed, ids, owners, interests)
	if err != nil {
		return nil, err
	}

	out := make([]models.NeedView, len(rows))
	for i, n := range rows {
		out[i] = models.NeedView{
			Need:          n,
			Owner:         rel.owner(n.User),
			InterestsFull: rel.interestList(n.Interests),
			Assets:        rel.assetList(n.ID),
		}
	}
	return out, nil
}

// Need populates a single row.
func (p *Populator) Need(ctx context.Context, n models.Need) (models.NeedView, error) {
	out, err := p.Needs(ctx, []models.Need{n})
	if err != nil {
		return models.NeedView{}, err
	}
	return out[0], nil
}

func unique(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
