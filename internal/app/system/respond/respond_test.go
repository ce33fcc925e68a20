package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type body struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Stack   string          `json:"stack"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return b
}

func TestError_TypedErrorKeepsStatus(t *testing.T) {
	rs := respond.New(zap.NewNop(), false)
	req := httptest.NewRequest("GET", "/needs/x", nil)
	rec := httptest.NewRecorder()

	rs.Error(rec, req, apierr.NotFound("Need post not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	b := decode(t, rec)
	if b.Success {
		t.Error("expected success=false")
	}
	if b.Message != "Need post not found" {
		t.Errorf("message: got %q", b.Message)
	}
	if b.Stack != "" {
		t.Error("stack must be omitted when ShowStack is false")
	}
}

func TestError_StackInDev(t *testing.T) {
	rs := respond.New(zap.NewNop(), true)
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	rs.Error(rec, req, errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d", rec.Code)
	}
	if b := decode(t, rec); b.Stack == "" {
		t.Error("expected stack in dev")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "store interests validation",
			err:     mongo.CommandError{Message: "interests: 1 interest(s) not in user's interest list"},
			status:  http.StatusBadRequest,
			message: respond.InterestsProfileMessage,
		},
		{
			name:    "store other validation",
			err:     mongo.CommandError{Message: "title is required"},
			status:  http.StatusBadRequest,
			message: "title is required",
		},
		{
			name: "server schema validation",
			err: mongo.WriteException{WriteErrors: []mongo.WriteError{
				{Code: 121, Message: "Document failed validation"},
			}},
			status:  http.StatusBadRequest,
			message: "Document failed validation",
		},
		{
			name:   "other command error",
			err:    mongo.CommandError{Code: 13, Message: "unauthorized"},
			status: http.StatusInternalServerError,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := respond.Normalize(tt.err)
			if got.Status != tt.status {
				t.Errorf("status: got %d, want %d", got.Status, tt.status)
			}
			if tt.message != "" && got.Message != tt.message {
				t.Errorf("message: got %q, want %q", got.Message, tt.message)
			}
		})
	}
}

func TestCreated_Envelope(t *testing.T) {
	rs := respond.New(zap.NewNop(), false)
	rec := httptest.NewRecorder()

	rs.Created(rec, "created", map[string]string{"id": "1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
	b := decode(t, rec)
	if !b.Success || b.Message != "created" {
		t.Errorf("unexpected envelope: %+v", b)
	}
}
