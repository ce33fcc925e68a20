package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bemyforce/bemyforce/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateInterest inserts a reference interest.
func (f *Fixtures) CreateInterest(ctx context.Context, name string) models.Interest {
	f.t.Helper()

	in := models.Interest{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("interests").InsertOne(ctx, in); err != nil {
		f.t.Fatalf("failed to create test interest: %v", err)
	}
	return in
}

// CreateUser inserts a verified, onboarded user holding the given interests.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, role string, interests ...primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	id := primitive.NewObjectID()
	if interests == nil {
		interests = []primitive.ObjectID{}
	}
	u := models.User{
		ID:            id,
		FullName:      fullName,
		Username:      "user_" + id.Hex()[18:],
		Email:         id.Hex() + "@test.com",
		Role:          role,
		Status:        "active",
		Interests:     interests,
		EmailVerified: true,
		Onboarded:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMember creates a regular user.
func (f *Fixtures) CreateMember(ctx context.Context, fullName string, interests ...primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, models.RoleUser, interests...)
}

// CreateAdmin creates an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, models.RoleAdmin)
}

// CreateAchievement inserts an achievement directly, bypassing store checks.
func (f *Fixtures) CreateAchievement(ctx context.Context, owner models.User, title string, status models.AchievementStatus) models.Achievement {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Achievement{
		ID:          primitive.NewObjectID(),
		User:        owner.ID,
		Title:       title,
		Description: models.RichText{Blocks: []map[string]any{}},
		Interests:   owner.Interests,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == models.AchievementApproved {
		a.ApprovedAt = &now
	}
	if status == models.AchievementRejected {
		a.RejectionReason = "not suitable"
	}
	if _, err := f.db.Collection("achievements").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test achievement: %v", err)
	}
	return a
}

// CreateNeed inserts a need directly, bypassing store checks.
func (f *Fixtures) CreateNeed(ctx context.Context, owner models.User, title string, approval models.ApprovalStatus, status models.NeedStatus, eventDate time.Time) models.Need {
	f.t.Helper()

	now := time.Now().UTC()
	n := models.Need{
		ID:          primitive.NewObjectID(),
		User:        owner.ID,
		Title:       title,
		Description: "{}",
		Interests:   owner.Interests,
		EventDate:   eventDate.UTC(),
		IsApproved:  approval,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if approval == models.ApprovalApproved {
		n.ApprovedAt = &now
	}
	if approval == models.ApprovalRejected {
		n.RejectionReason = "not suitable"
	}
	if _, err := f.db.Collection("needs").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test need: %v", err)
	}
	return n
}

// CreateAsset inserts an asset record directly.
func (f *Fixtures) CreateAsset(ctx context.Context, a models.Asset) models.Asset {
	f.t.Helper()

	now := time.Now().UTC()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.URL == "" {
		a.URL = "https://cdn.test/" + a.ID.Hex()
	}
	if a.PublicID == "" {
		a.PublicID = "test/" + a.ID.Hex()
	}
	if a.AssetType == "" {
		a.AssetType = models.AssetImage
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := f.db.Collection("assets").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test asset: %v", err)
	}
	return a
}
