package interests_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/features/interests"
	"github.com/bemyforce/bemyforce/internal/app/system/indexes"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/testutil"
	"go.uber.org/zap"
)

func TestServeList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateInterest(ctx, "Running")
	fx.CreateInterest(ctx, "chess")
	member := fx.CreateMember(ctx, "Member")

	h := interests.NewHandler(db, respond.New(zap.NewNop(), false), zap.NewNop())
	rec := httptest.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/master/interests", member))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var rows []struct {
		Name string `json:"name"`
	}
	testutil.DecodeData(t, testutil.DecodeEnvelope(t, rec), &rows)
	if len(rows) != 2 || rows[0].Name != "chess" {
		t.Errorf("rows: %+v", rows)
	}
}

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	admin := fx.CreateAdmin(ctx, "Admin")
	h := interests.NewHandler(db, respond.New(zap.NewNop(), false), zap.NewNop())

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/master/interests", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, testutil.WithUser(req, admin))
		return rec
	}

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"create", `{"name":"Climbing"}`, http.StatusCreated, "Interest created successfully"},
		{"duplicate ignores case", `{"name":"climbing"}`, http.StatusBadRequest, "Interest already exists"},
		{"blank", `{"name":"  "}`, http.StatusBadRequest, "Validation failed"},
		{"bad json", `{`, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d (body=%s)", rec.Code, tt.status, rec.Body.String())
			}
			if body := testutil.DecodeEnvelope(t, rec); body.Message != tt.message {
				t.Errorf("message: got %q, want %q", body.Message, tt.message)
			}
		})
	}
}
