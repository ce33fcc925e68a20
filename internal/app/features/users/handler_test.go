package users_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/features/users"
	assetstore "github.com/bemyforce/bemyforce/internal/app/store/assets"
	"github.com/bemyforce/bemyforce/internal/app/store/audit"
	"github.com/bemyforce/bemyforce/internal/app/system/attachments"
	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/bemyforce/bemyforce/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleDeleteAssets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := zap.NewNop()
	h := users.NewHandler(attachments.New(assetstore.New(db), objectstore.New(testutil.NewStorage()), nil, logger), respond.New(logger, false), logger)
	h.Audit = auditlog.New(audit.New(db), logger, auditlog.Config{Content: auditlog.DestDB})

	admin := fx.CreateAdmin(ctx, "Admin")
	target := fx.CreateMember(ctx, "Target")
	bystander := fx.CreateMember(ctx, "Bystander")
	for i := 0; i < 3; i++ {
		fx.CreateAsset(ctx, models.Asset{User: target.ID, RelatedModel: models.RelatedAchievement, RelatedID: primitive.NewObjectID()})
	}
	fx.CreateAsset(ctx, models.Asset{User: bystander.ID, RelatedModel: models.RelatedNeed, RelatedID: primitive.NewObjectID()})

	call := func(id string) *httptest.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("DELETE", "/users/"+id+"/assets", admin), "id", id)
		rec := httptest.NewRecorder()
		h.HandleDeleteAssets(rec, req)
		return rec
	}

	rec := call(target.ID.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d (body=%s)", rec.Code, rec.Body.String())
	}
	var got struct {
		Deleted int `json:"deleted"`
	}
	body := testutil.DecodeEnvelope(t, rec)
	testutil.DecodeData(t, body, &got)
	if body.Message != "All user assets deleted successfully" || got.Deleted != 3 {
		t.Errorf("response: %q deleted=%d", body.Message, got.Deleted)
	}

	left, err := db.Collection("assets").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if left != 1 {
		t.Errorf("assets left: got %d, want 1", left)
	}

	if rec := call(target.ID.Hex()); rec.Code != http.StatusOK {
		t.Errorf("repeat call: got %d, want 200", rec.Code)
	}
	if rec := call("bad"); rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: got %d, want 404", rec.Code)
	}

	// The empty repeat call records nothing.
	events, _, err := audit.New(db).Query(ctx, audit.QueryFilter{OwnerID: &target.ID}, paging.Page{Number: 1, Limit: 10})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventUserAssetsPurged || events[0].Details["count"] != "3" {
		t.Errorf("audit events: %+v", events)
	}
}
