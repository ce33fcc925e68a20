// internal/app/system/auth/auth.go
//
// Package auth reads the session cookie issued by the identity service and
// exposes the signed-in user to handlers. This service never issues or
// clears sessions; it only verifies and reads them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"github.com/bemyforce/bemyforce/internal/app/system/respond"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// SessionUser is what we inject into r.Context() for a signed-in request.
type SessionUser struct {
	ID            string
	Name          string
	Username      string
	Email         string
	Role          string
	EmailVerified bool
	Onboarded     bool
}

// IsAdmin reports whether the user holds the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, "admin")
}

// UserFetcher loads fresh user data for a session's user id. It returns
// nil when the user does not exist or is disabled.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing the cookie.
// Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// SessionManager verifies session cookies and guards routes.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	resp    *respond.Responder
	log     *zap.Logger
}

// NewSessionManager builds a read-only session manager. sessionKey must be
// the signing key shared with the identity service.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	logger.Info("session reader initialized",
		zap.String("cookie", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store: store,
		name:  name,
		resp:  respond.New(logger, false),
		log:   logger,
	}, nil
}

// SetUserFetcher sets the fetcher used by LoadSessionUser.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// Store exposes the cookie store. Tests use it to mint cookies.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name returns the session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// LoadSessionUser injects the user into context when the request carries a
// valid session for an existing, enabled user. Role and flags are always
// read fresh through the UserFetcher.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			if isDecodeError(err) {
				sm.log.Debug("ignoring undecodable session cookie", zap.Error(err))
			} else {
				sm.log.Warn("session read failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		id, _ := sess.Values[userIDKey].(string)
		if id == "" || sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		if u := sm.fetcher.FetchUser(r.Context(), id); u != nil {
			r = WithTestUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects anonymous requests with 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			sm.resp.Error(w, r, apierr.Unauthenticated())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVerified rejects users whose email is not verified.
func (sm *SessionManager) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			sm.resp.Error(w, r, apierr.Unauthenticated())
			return
		}
		if !u.EmailVerified {
			sm.resp.Error(w, r, apierr.Forbidden("Please verify your email to continue"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOnboarded rejects users who have not completed onboarding.
func (sm *SessionManager) RequireOnboarded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			sm.resp.Error(w, r, apierr.Unauthenticated())
			return
		}
		if !u.Onboarded {
			sm.resp.Error(w, r, apierr.Forbidden("Please complete onboarding to continue"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects users whose role is not in allowed.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				sm.resp.Error(w, r, apierr.Unauthenticated())
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				sm.resp.Error(w, r, apierr.Forbidden("You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Member is the standard gate for content routes: signed in, verified and
// onboarded.
func (sm *SessionManager) Member(next http.Handler) http.Handler {
	return sm.RequireSignedIn(sm.RequireVerified(sm.RequireOnboarded(next)))
}

func isDecodeError(err error) bool {
	var multi securecookie.MultiError
	if errors.As(err, &multi) {
		return multi.IsDecode()
	}
	var se securecookie.Error
	if errors.As(err, &se) {
		return se.IsDecode()
	}
	return false
}
