package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager("0123456789abcdef0123456789abcdef", "eventhub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := NewSessionManager("", "eventhub-test", "", false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestRequireSignedIn_Anonymous_HTML(t *testing.T) {
	sm := newManager(t)

	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for anonymous request")
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?return=%2Fevents" {
		t.Errorf("location: got %q", loc)
	}
}

func TestRequireSignedIn_Anonymous_API(t *testing.T) {
	sm := newManager(t)

	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for anonymous request")
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	sm := newManager(t)

	called := false
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	req = WithTestUser(req, &SessionUser{ID: "507f1f77bcf86cd799439011", Role: "admin"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Error("handler should run for authenticated request")
	}
}

func TestRequireRole_WrongRole(t *testing.T) {
	sm := newManager(t)

	h := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for wrong role")
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	req.Header.Set("Accept", "text/html")
	req = WithTestUser(req, &SessionUser{ID: "507f1f77bcf86cd799439011", Role: "coordinator"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/forbidden" {
		t.Errorf("location: got %q", loc)
	}
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	sm := newManager(t)

	called := false
	h := sm.RequireRole("Admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	req = WithTestUser(req, &SessionUser{ID: "507f1f77bcf86cd799439011", Role: "admin"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Error("handler should run when role matches case-insensitively")
	}
}

func TestRequireRole_HTMXRedirect(t *testing.T) {
	sm := newManager(t)

	h := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/events", nil)
	req.Header.Set("HX-Request", "true")
	req = WithTestUser(req, &SessionUser{ID: "507f1f77bcf86cd799439011", Role: "coordinator"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if dest := rec.Header().Get("HX-Redirect"); dest != "/forbidden" {
		t.Errorf("HX-Redirect: got %q", dest)
	}
}
