package errors_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	errorsfeature "github.com/bemyforce/bemyforce/internal/app/features/errors"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/bemyforce/bemyforce/internal/testutil"
	"go.uber.org/zap"
)

func TestFallbacks(t *testing.T) {
	h := errorsfeature.NewHandler(respond.New(zap.NewNop(), false))

	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		message string
	}{
		{"not found", h.NotFound, http.StatusNotFound, "Not Found"},
		{"method not allowed", h.MethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest("GET", "/nope", nil))
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.status)
			}
			body := testutil.DecodeEnvelope(t, rec)
			if body.Success || body.Message != tt.message {
				t.Errorf("envelope: %+v", body)
			}
		})
	}
}
