package feedqueries_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/store/queries/feedqueries"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/bemyforce/bemyforce/internal/testutil"
)

func TestPopulator_Achievements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	p := feedqueries.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	music := fixtures.CreateInterest(ctx, "Music")
	u := fixtures.CreateMember(ctx, "Asha Rao", music.ID)
	a1 := fixtures.CreateAchievement(ctx, u, "one", models.AchievementApproved)
	a2 := fixtures.CreateAchievement(ctx, u, "two", models.AchievementApproved)
	fixtures.CreateAsset(ctx, models.Asset{User: u.ID, RelatedModel: models.RelatedAchievement, RelatedID: a1.ID})

	views, err := p.Achievements(ctx, []models.Achievement{a1, a2})
	if err != nil {
		t.Fatalf("Achievements failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].Owner == nil || views[0].Owner.FullName != "Asha Rao" {
		t.Errorf("owner not populated: %+v", views[0].Owner)
	}
	if len(views[0].InterestsFull) != 1 || views[0].InterestsFull[0].Name != "Music" {
		t.Errorf("interests not populated: %+v", views[0].InterestsFull)
	}
	if len(views[0].Assets) != 1 || len(views[1].Assets) != 0 {
		t.Errorf("assets: got %d and %d", len(views[0].Assets), len(views[1].Assets))
	}

	raw, err := json.Marshal(views[1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["user"].(map[string]any); !ok {
		t.Errorf("expected user to be an object, got %T", decoded["user"])
	}
	if assets, ok := decoded["assets"].([]any); !ok || len(assets) != 0 {
		t.Errorf("expected empty assets array, got %v", decoded["assets"])
	}
}

func TestPopulator_Need(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	p := feedqueries.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Asha Rao")
	n := fixtures.CreateNeed(ctx, u, "Drummer", models.ApprovalApproved, models.NeedSearching, time.Now().Add(time.Hour))
	fixtures.CreateAsset(ctx, models.Asset{User: u.ID, RelatedModel: models.RelatedNeed, RelatedID: n.ID})
	// An achievement asset with the same related id must not leak in.
	fixtures.CreateAsset(ctx, models.Asset{User: u.ID, RelatedModel: models.RelatedAchievement, RelatedID: n.ID})

	v, err := p.Need(ctx, n)
	if err != nil {
		t.Fatalf("Need failed: %v", err)
	}
	if len(v.Assets) != 1 || v.Assets[0].RelatedModel != models.RelatedNeed {
		t.Errorf("unexpected assets: %+v", v.Assets)
	}
}
