package validators_test

import (
	"testing"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/system/validators"
	"github.com/bemyforce/bemyforce/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"achievements", "needs", "assets", "interests", "users"} {
		if !have[want] {
			t.Errorf("collection %s not created", want)
		}
	}
}

func achievementDoc(status string) bson.M {
	return bson.M{
		"user":        primitive.NewObjectID(),
		"title":       "Ran a marathon",
		"description": bson.M{"blocks": bson.A{}},
		"interests":   bson.A{primitive.NewObjectID()},
		"status":      status,
	}
}

func needDoc(approval string) bson.M {
	return bson.M{
		"user":        primitive.NewObjectID(),
		"title":       "Need a driver",
		"description": `{"blocks":[]}`,
		"interests":   bson.A{primitive.NewObjectID()},
		"event_date":  time.Now().Add(24 * time.Hour),
		"is_approved": approval,
		"status":      "searching",
	}
}

func assetDoc(model string) bson.M {
	return bson.M{
		"user":          primitive.NewObjectID(),
		"url":           "https://cdn.test/x.png",
		"public_id":     "x/" + primitive.NewObjectID().Hex(),
		"asset_type":    "image",
		"related_model": model,
		"related_id":    primitive.NewObjectID(),
	}
}

func with(doc bson.M, k string, v any) bson.M {
	doc[k] = v
	return doc
}

func TestValidators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"achievement pending", "achievements", achievementDoc("pending"), false},
		{"achievement unknown status", "achievements", achievementDoc("published"), true},
		{"achievement rejected without reason", "achievements", achievementDoc("rejected"), true},
		{"achievement rejected with reason", "achievements", with(achievementDoc("rejected"), "rejection_reason", "spam"), false},
		{"achievement no interests", "achievements", with(achievementDoc("pending"), "interests", bson.A{}), true},
		{"achievement blank title", "achievements", with(achievementDoc("pending"), "title", "   "), true},
		{"need pending", "needs", needDoc("pending"), false},
		{"need rejected without reason", "needs", needDoc("rejected"), true},
		{"need rejected with reason", "needs", with(needDoc("rejected"), "rejection_reason", "off topic"), false},
		{"need bad status", "needs", with(needDoc("approved"), "status", "closed"), true},
		{"need missing event date", "needs", with(needDoc("pending"), "event_date", "tomorrow"), true},
		{"asset on need", "assets", assetDoc("Need"), false},
		{"asset on user", "assets", assetDoc("User"), false},
		{"asset unknown model", "assets", assetDoc("Comment"), true},
		{"asset bad type", "assets", with(assetDoc("Achievement"), "asset_type", "audio"), true},
		{"interest ok", "interests", bson.M{"name": "Music", "name_ci": "music"}, false},
		{"interest blank", "interests", bson.M{"name": "", "name_ci": ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
