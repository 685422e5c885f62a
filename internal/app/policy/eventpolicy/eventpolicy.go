// Package eventpolicy decides whether an identity may perform an
// operation on an event-scoped resource. Authorize is pure: route
// middleware and procedure handlers are two call sites of the same
// decision, reacting differently to a Deny (redirect vs reject).
package eventpolicy

import (
	"context"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Operation names a guarded action in the event-management domain.
type Operation string

const (
	// Event-scoped operations a coordinator may perform on their own event.
	OpReadEvent      Operation = "read_event"
	OpReadDetails    Operation = "read_details"
	OpWriteDetails   Operation = "write_details"
	OpManageSchedule Operation = "manage_schedule"

	// Admin-only operations. ManageEvent covers create/delete, the
	// hidden flag, and registration status; coordinators never get it.
	OpManageEvent  Operation = "manage_event"
	OpDecideReview Operation = "decide_review"
	OpManageUsers  Operation = "manage_users"
)

// Deny reasons; callers map these to 401 vs 403 semantics.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonUnauthorized    = "unauthorized"
)

// ResourceRef identifies the resource an operation targets. A zero
// EventID means the operation is not scoped to a specific event
// (e.g. listing, user management).
type ResourceRef struct {
	EventID primitive.ObjectID
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string // set only on deny
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny is the negative decision with a reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// coordinatorOps is the full set of operations a coordinator may
// perform, and only against their own event.
var coordinatorOps = map[Operation]struct{}{
	OpReadEvent:      {},
	OpReadDetails:    {},
	OpWriteDetails:   {},
	OpManageSchedule: {},
}

// Authorize evaluates the access rules in order; first match wins.
//
//  1. Anonymous is denied everything.
//  2. Admins are allowed everything in this domain.
//  3. Coordinators are allowed the coordinator operations against the
//     event their identity is bound to. The binding is resolved per
//     request from a live event record (authz.IdentityFromRequest), so
//     a coordinator whose email matches no event carries a zero
//     EventID and is denied here.
//  4. Everything else is denied.
func Authorize(ident authz.Identity, op Operation, ref ResourceRef) Decision {
	switch id := ident.(type) {
	case authz.Admin:
		return Allow()
	case authz.Coordinator:
		if _, ok := coordinatorOps[op]; !ok {
			return Deny(ReasonUnauthorized)
		}
		if id.EventID.IsZero() || ref.EventID.IsZero() || id.EventID != ref.EventID {
			return Deny(ReasonUnauthorized)
		}
		return Allow()
	case authz.Anonymous:
		return Deny(ReasonUnauthenticated)
	}
	return Deny(ReasonUnauthorized)
}

// CanManageEvent reports whether the current request user may write
// coordinator-scoped data for the given event:
//   - Admins always can
//   - Coordinators can if the live event binding matches eventID
//
// Returns an error only when the identity lookup hits the database and
// fails, so callers can distinguish "not authorized" (false, nil) from
// "infrastructure failure" (false, err).
func CanManageEvent(ctx context.Context, db *mongo.Database, r *http.Request, eventID primitive.ObjectID) (bool, error) {
	ident := authz.IdentityFromRequest(ctx, db, r)
	d := Authorize(ident, OpManageSchedule, ResourceRef{EventID: eventID})
	return d.Allowed, nil
}
