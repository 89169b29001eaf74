package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/studypointin/studypoint/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/admin/bulk-upload", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/api/upload", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/admin/bulk-upload", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); !strings.HasPrefix(hx, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hx)
	}
}

func TestRequireRole_WrongRole_Forbidden(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole("admin")(okHandler())

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Accept", "application/json")
	req = auth.WithUser(req, &auth.SessionUser{ID: "u1", Role: "viewer"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole("admin")(okHandler())

	req := httptest.NewRequest("GET", "/admin", nil)
	req = auth.WithUser(req, &auth.SessionUser{ID: "u1", Role: "Admin"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSignInRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	err := sm.SignIn(rec, req, auth.SessionUser{
		ID: "u1", Name: "Admin", Email: "admin@studypoint.in", Role: "admin",
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Replay the cookie through the middleware.
	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req2 := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected a user in context")
	}
	if got.ID != "u1" || got.Role != "admin" || got.Email != "admin@studypoint.in" {
		t.Errorf("unexpected session user: %+v", got)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if err := sm.SignIn(rec, req, auth.SessionUser{ID: "u1", Role: "admin"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	if err := sm.SignOut(rec2, req2); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	for _, c := range rec2.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			t.Error("expected the session cookie to be expired")
		}
	}
}
