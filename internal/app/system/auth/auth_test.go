package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

type stubFetcher struct {
	users map[string]*auth.SessionUser
}

func (f stubFetcher) FetchUser(_ context.Context, id string) *auth.SessionUser {
	return f.users[id]
}

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func sessionCookie(t *testing.T, sm *auth.SessionManager, userID string) *http.Cookie {
	t.Helper()
	encoded, err := securecookie.EncodeMulti(sm.Name(), map[interface{}]interface{}{"user_id": userID}, sm.Store().Codecs...)
	if err != nil {
		t.Fatalf("encode cookie: %v", err)
	}
	return &http.Cookie{Name: sm.Name(), Value: encoded}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestLoadSessionUser_ValidCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(stubFetcher{users: map[string]*auth.SessionUser{
		"u1": {ID: "u1", Name: "Asha", Role: "user", EmailVerified: true, Onboarded: true},
	}})

	var got *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie(t, sm, "u1"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Name != "Asha" {
		t.Fatalf("expected user in context, got %+v", got)
	}
}

func TestLoadSessionUser_TamperedCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(stubFetcher{users: map[string]*auth.SessionUser{"u1": {ID: "u1"}}})

	found := true
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.Name(), Value: "garbage"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("expected no user for tampered cookie")
	}
}

func TestLoadSessionUser_UnknownUser(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(stubFetcher{users: map[string]*auth.SessionUser{}})

	found := true
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie(t, sm, "ghost"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("expected no user when fetcher returns nil")
	}
}

func TestGates(t *testing.T) {
	sm := newTestSessionManager(t)

	tests := []struct {
		name   string
		user   *auth.SessionUser
		gate   func(http.Handler) http.Handler
		status int
	}{
		{"signed in: anonymous", nil, sm.RequireSignedIn, http.StatusUnauthorized},
		{"signed in: ok", &auth.SessionUser{ID: "1"}, sm.RequireSignedIn, http.StatusOK},
		{"verified: not verified", &auth.SessionUser{ID: "1"}, sm.RequireVerified, http.StatusForbidden},
		{"verified: ok", &auth.SessionUser{ID: "1", EmailVerified: true}, sm.RequireVerified, http.StatusOK},
		{"onboarded: not onboarded", &auth.SessionUser{ID: "1", EmailVerified: true}, sm.RequireOnboarded, http.StatusForbidden},
		{"onboarded: ok", &auth.SessionUser{ID: "1", Onboarded: true}, sm.RequireOnboarded, http.StatusOK},
		{"admin: user role", &auth.SessionUser{ID: "1", Role: "user"}, sm.RequireRole("admin"), http.StatusForbidden},
		{"admin: admin role", &auth.SessionUser{ID: "1", Role: "Admin"}, sm.RequireRole("admin"), http.StatusOK},
		{"member: anonymous", nil, sm.Member, http.StatusUnauthorized},
		{"member: not onboarded", &auth.SessionUser{ID: "1", EmailVerified: true}, sm.Member, http.StatusForbidden},
		{"member: ok", &auth.SessionUser{ID: "1", EmailVerified: true, Onboarded: true}, sm.Member, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			tt.gate(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
