package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit action names.
const (
	AuditEventCreated    = "event.created"
	AuditEventUpdated    = "event.updated"
	AuditEventDeleted    = "event.deleted"
	AuditDetailsSubmit   = "review.submitted"
	AuditReviewApproved  = "review.approved"
	AuditReviewRejected  = "review.rejected"
	AuditUserCreated     = "user.created"
	AuditUserUpdated     = "user.updated"
	AuditUserDeleted     = "user.deleted"
	AuditSignIn          = "auth.sign_in"
	AuditSignOut         = "auth.sign_out"
	AuditScheduleChanged = "schedule.changed"
)

// AuditEvent is one entry in the administrative audit trail.
type AuditEvent struct {
	ID      primitive.ObjectID `bson:"_id"`
	Action  string             `bson:"action"`
	ActorID string             `bson:"actor_id,omitempty"`
	Actor   string             `bson:"actor,omitempty"`
	EventID primitive.ObjectID `bson:"event_id,omitempty"`
	Detail  string             `bson:"detail,omitempty"`
	At      time.Time          `bson:"at"`
}
