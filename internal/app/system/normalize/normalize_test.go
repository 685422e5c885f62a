package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Coordinator@Example.COM", "coordinator@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Email(tt.in); got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegistrationStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"open", "open"},
		{"OPEN", "open"},
		{" upcoming ", "upcoming"},
		{"closed", "closed"},
		{"paused", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RegistrationStatus(tt.in); got != tt.want {
			t.Errorf("RegistrationStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRole(t *testing.T) {
	if got := Role("  Admin "); got != "admin" {
		t.Errorf("Role: got %q, want %q", got, "admin")
	}
}
