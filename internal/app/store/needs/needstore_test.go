package needstore_test

import (
	"fmt"
	"testing"
	"time"

	needstore "github.com/bemyforce/bemyforce/internal/app/store/needs"
	"github.com/bemyforce/bemyforce/internal/app/system/paging"
	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/bemyforce/bemyforce/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	music := fixtures.CreateInterest(ctx, "Music")
	u := fixtures.CreateMember(ctx, "Asha Rao", music.ID)

	created, err := store.Create(ctx, models.Need{
		User:        u.ID,
		Title:       "Need a drummer",
		Description: `{"blocks":[]}`,
		Interests:   []primitive.ObjectID{music.ID},
		EventDate:   time.Now().Add(48 * time.Hour),
		IsApproved:  models.ApprovalApproved, // ignored
		Status:      models.NeedFulfilled,    // ignored
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.IsApproved != models.ApprovalPending {
		t.Errorf("is_approved: got %q, want pending", created.IsApproved)
	}
	if created.Status != models.NeedSearching {
		t.Errorf("status: got %q, want searching", created.Status)
	}
}

func TestStore_Create_InterestOutsideProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	music := fixtures.CreateInterest(ctx, "Music")
	chess := fixtures.CreateInterest(ctx, "Chess")
	u := fixtures.CreateMember(ctx, "Asha Rao", music.ID)

	_, err := store.Create(ctx, models.Need{
		User:        u.ID,
		Title:       "t",
		Description: "{}",
		Interests:   []primitive.ObjectID{music.ID, chess.ID},
		EventDate:   time.Now().Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	n, _ := db.Collection("needs").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("expected no need persisted, found %d", n)
	}
}

func TestStore_SetApproval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Asha Rao")
	n := fixtures.CreateNeed(ctx, u, "Drummer", models.ApprovalPending, models.NeedSearching, time.Now().Add(time.Hour))

	got, err := store.SetApproval(ctx, n.ID, models.ApprovalApproved, "")
	if err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}
	if got.IsApproved != models.ApprovalApproved || got.ApprovedAt == nil {
		t.Errorf("unexpected result: %+v", got)
	}
	if got.Status != models.NeedSearching {
		t.Errorf("fulfillment axis changed to %q", got.Status)
	}

	if _, err := store.SetApproval(ctx, n.ID, models.ApprovalRejected, "late"); err != needstore.ErrNotPending {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
	if _, err := store.SetApproval(ctx, primitive.NewObjectID(), models.ApprovalApproved, ""); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_SetApproval_RejectNeedsReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Asha Rao")
	n := fixtures.CreateNeed(ctx, u, "Drummer", models.ApprovalPending, models.NeedSearching, time.Now().Add(time.Hour))

	if _, err := store.SetApproval(ctx, n.ID, models.ApprovalRejected, ""); err == nil {
		t.Fatal("expected error without reason")
	}
	got, err := store.SetApproval(ctx, n.ID, models.ApprovalRejected, "spam")
	if err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}
	if got.RejectionReason != "spam" || got.ApprovedAt != nil {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestStore_MarkFulfilled_Twice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Asha Rao")
	n := fixtures.CreateNeed(ctx, u, "Drummer", models.ApprovalApproved, models.NeedSearching, time.Now().Add(time.Hour))

	got, err := store.MarkFulfilled(ctx, n.ID)
	if err != nil {
		t.Fatalf("MarkFulfilled failed: %v", err)
	}
	if got.Status != models.NeedFulfilled || got.IsApproved != models.ApprovalApproved {
		t.Errorf("unexpected state: %s/%s", got.IsApproved, got.Status)
	}
	if got.FulfilledAt != nil {
		t.Error("expected FulfilledAt to stay unset")
	}

	if _, err := store.MarkFulfilled(ctx, n.ID); err != needstore.ErrNotFulfillable {
		t.Errorf("second call: expected ErrNotFulfillable, got %v", err)
	}
}

func TestStore_MarkFulfilled_Pending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Asha Rao")
	n := fixtures.CreateNeed(ctx, u, "Drummer", models.ApprovalPending, models.NeedSearching, time.Now().Add(time.Hour))

	if _, err := store.MarkFulfilled(ctx, n.ID); err != needstore.ErrNotFulfillable {
		t.Errorf("expected ErrNotFulfillable, got %v", err)
	}
}

func TestStore_ExpirePast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Asha Rao")
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	due := fixtures.CreateNeed(ctx, u, "due", models.ApprovalApproved, models.NeedSearching, past)
	fulfilled := fixtures.CreateNeed(ctx, u, "fulfilled", models.ApprovalApproved, models.NeedFulfilled, past)
	pending := fixtures.CreateNeed(ctx, u, "pending", models.ApprovalPending, models.NeedSearching, past)
	upcoming := fixtures.CreateNeed(ctx, u, "upcoming", models.ApprovalApproved, models.NeedSearching, future)

	n, err := store.ExpirePast(ctx, time.Now())
	if err != nil {
		t.Fatalf("ExpirePast failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired, got %d", n)
	}

	want := map[primitive.ObjectID]models.NeedStatus{
		due.ID:       models.NeedExpired,
		fulfilled.ID: models.NeedFulfilled,
		pending.ID:   models.NeedSearching,
		upcoming.ID:  models.NeedSearching,
	}
	for id, status := range want {
		got, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != status {
			t.Errorf("%s: got %q, want %q", got.Title, got.Status, status)
		}
	}

	n, err = store.ExpirePast(ctx, time.Now())
	if err != nil || n != 0 {
		t.Errorf("second sweep: n=%d err=%v", n, err)
	}
}

func TestStore_Find_SortedByEventDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := needstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Asha Rao")
	base := time.Now().Add(time.Hour)
	for i := 10; i >= 0; i-- {
		fixtures.CreateNeed(ctx, u, fmt.Sprintf("n%02d", i), models.ApprovalApproved, models.NeedSearching, base.Add(time.Duration(i)*time.Hour))
	}

	rows, p, err := store.Find(ctx,
		bson.M{"is_approved": "approved"},
		paging.Page{Number: 1, Limit: 10},
		bson.D{{Key: "event_date", Value: 1}},
	)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(rows) != 10 || !p.HasNextPage {
		t.Fatalf("got %d rows, hasNext=%v", len(rows), p.HasNextPage)
	}
	if rows[0].Title != "n00" || rows[9].Title != "n09" {
		t.Errorf("unexpected order: first=%s last=%s", rows[0].Title, rows[9].Title)
	}
}
