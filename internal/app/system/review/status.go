// Package review implements the coordinator-update review workflow: a
// coordinator stages changes to their event's details, an admin
// approves or rejects them, and approval publishes the staged copy onto
// the event itself.
package review

import (
	"fmt"

	"github.com/dalemusser/eventhub/internal/domain/models"
)

// Status is an event's position in the review workflow.
type Status string

const (
	StatusNone     = Status(models.ReviewNone)
	StatusPending  = Status(models.ReviewPending)
	StatusApproved = Status(models.ReviewApproved)
	StatusRejected = Status(models.ReviewRejected)
)

func (s Status) String() string { return string(s) }

// ParseStatus maps a stored status string onto the typed value. Unknown
// or empty input parses as StatusNone so legacy records keep working.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw)
	default:
		return StatusNone
	}
}

// Decidable reports whether an admin decision applies in this state.
// Only pending requests are decidable; deciding anything else is a
// harmless no-op at the workflow level.
func (s Status) Decidable() bool { return s == StatusPending }

// Decision is an admin's verdict on a pending review request.
type Decision string

const (
	Approve = Decision("approve")
	Reject  = Decision("reject")
)

// ParseDecision validates a decision submitted through a form or API.
func ParseDecision(raw string) (Decision, error) {
	switch Decision(raw) {
	case Approve, Reject:
		return Decision(raw), nil
	default:
		return "", fmt.Errorf("unknown review decision %q", raw)
	}
}

// Outcome is the status a decision lands the event in.
func (d Decision) Outcome() Status {
	if d == Approve {
		return StatusApproved
	}
	return StatusRejected
}
