// Package normalize canonicalizes user-supplied enum-ish strings
// (roles, statuses, registration states) before storage or comparison.
package normalize

import "strings"

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status string.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Email trims and lowercases an email address for CI matching.
// Coordinator identity resolution depends on this being applied to both
// User.LoginID and Event.CoordinatorEmail.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RegistrationStatus returns the canonical registration status, or ""
// if the value is not one of upcoming/open/closed.
func RegistrationStatus(s string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "upcoming", "open", "closed":
		return v
	}
	return ""
}
