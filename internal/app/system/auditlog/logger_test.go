package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/store/audit"
	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/bemyforce/bemyforce/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// All of these must be no-ops.
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.NeedFulfilled(ctx, req, models.Need{})
	logger.NeedsExpired(ctx, 3)
	logger.UserAssetsPurged(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), 2)
}

func countAll(t *testing.T, store *audit.Store) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := store.CountByFilter(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	return n
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		name   string
		config auditlog.Config
		stored int64
	}{
		{"off", auditlog.Config{Moderation: auditlog.DestOff, Content: auditlog.DestOff}, 0},
		{"log only", auditlog.Config{Moderation: auditlog.DestLog, Content: auditlog.DestLog}, 0},
		{"db only", auditlog.Config{Moderation: auditlog.DestDB, Content: auditlog.DestDB}, 2},
		{"moderation only", auditlog.Config{Moderation: auditlog.DestAll, Content: auditlog.DestOff}, 1},
		{"defaults", auditlog.Config{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			logger := auditlog.New(store, zap.NewNop(), tt.config)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			n := models.Need{ID: primitive.NewObjectID(), User: primitive.NewObjectID(), IsApproved: models.ApprovalApproved}
			logger.NeedModerated(ctx, nil, primitive.NewObjectID(), n)
			logger.NeedFulfilled(ctx, nil, n)

			if got := countAll(t, store); got != tt.stored {
				t.Errorf("stored: got %d, want %d", got, tt.stored)
			}
		})
	}
}

func TestLogger_ModerationEventShape(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := primitive.NewObjectID()
	a := models.Achievement{
		ID:              primitive.NewObjectID(),
		User:            primitive.NewObjectID(),
		Status:          models.AchievementRejected,
		RejectionReason: "off topic",
	}
	req := httptest.NewRequest("PATCH", "/achievements/x/approval", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	logger.AchievementModerated(ctx, req, admin, a)

	events, _, err := store.Query(ctx, audit.QueryFilter{ActorID: &admin}, paging.Page{Number: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.EventType != audit.EventAchievementRejected || ev.Category != audit.CategoryModeration {
		t.Errorf("classification: %s/%s", ev.Category, ev.EventType)
	}
	if ev.OwnerID == nil || *ev.OwnerID != a.User || ev.EntityID == nil || *ev.EntityID != a.ID {
		t.Errorf("who/what not recorded: %+v", ev)
	}
	if ev.IP != "203.0.113.9" || ev.Details["rejection_reason"] != "off topic" {
		t.Errorf("context: ip=%q details=%v", ev.IP, ev.Details)
	}
}
