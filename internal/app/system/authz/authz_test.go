package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/authz"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	role, name, _, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false for request without user")
	}
	if role != "visitor" {
		t.Errorf("role: got %q, want %q", role, "visitor")
	}
	if name != "" {
		t.Errorf("name: got %q, want empty", name)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-objectid", Role: "admin"})

	_, _, _, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false for malformed user ID (fail closed)")
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   "507f1f77bcf86cd799439011",
		Name: "Pat Admin",
		Role: "Admin",
	})

	role, name, _, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "admin" {
		t.Errorf("role: got %q, want %q", role, "admin")
	}
	if name != "Pat Admin" {
		t.Errorf("name: got %q", name)
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"superadmin", true},
		{"coordinator", false},
		{"visitor", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req = auth.WithTestUser(req, &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: tt.role})
		if got := authz.IsAdmin(req); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestIdentityFromRequest_Anonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	ident := authz.IdentityFromRequest(req.Context(), nil, req)
	if _, ok := ident.(authz.Anonymous); !ok {
		t.Errorf("expected Anonymous, got %T", ident)
	}
}

func TestIdentityFromRequest_Admin(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "superadmin"})

	ident := authz.IdentityFromRequest(req.Context(), nil, req)
	if _, ok := ident.(authz.Admin); !ok {
		t.Errorf("expected Admin, got %T", ident)
	}
}

func TestIdentityFromRequest_CoordinatorWithoutDB(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:      "507f1f77bcf86cd799439011",
		LoginID: "Coord@Example.com",
		Role:    "coordinator",
	})

	ident := authz.IdentityFromRequest(req.Context(), nil, req)
	coord, ok := ident.(authz.Coordinator)
	if !ok {
		t.Fatalf("expected Coordinator, got %T", ident)
	}
	if coord.Email != "coord@example.com" {
		t.Errorf("email: got %q, want lowercased", coord.Email)
	}
	if !coord.EventID.IsZero() {
		t.Error("expected zero EventID with no db lookup")
	}
}
