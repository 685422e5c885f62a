package review

import (
	"context"
	"errors"

	"github.com/dalemusser/eventhub/internal/app/policy/eventpolicy"
	detailsstore "github.com/dalemusser/eventhub/internal/app/store/eventdetails"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/app/system/auditlog"
	"github.com/dalemusser/eventhub/internal/app/system/authz"
	"github.com/dalemusser/eventhub/internal/app/system/txn"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrUnauthenticated = errors.New("sign in to perform this action")
	ErrForbidden       = errors.New("you do not have access to this event")
)

// Workflow coordinates staged detail updates and admin decisions.
// All multi-document writes go through txn.WithTransaction, with writes
// ordered data first and status flag last so the standalone-server
// fallback never leaves a pending flag without its data.
type Workflow struct {
	client  *mongo.Client
	events  *eventstore.Store
	details *detailsstore.Store
	audit   *auditlog.Logger
	log     *zap.Logger
}

func NewWorkflow(client *mongo.Client, events *eventstore.Store, details *detailsstore.Store, audit *auditlog.Logger, log *zap.Logger) *Workflow {
	return &Workflow{client: client, events: events, details: details, audit: audit, log: log}
}

func denyError(d eventpolicy.Decision) error {
	if d.Reason == eventpolicy.ReasonUnauthenticated {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// SubmitUpdate merge-patches the staged details for an event and marks
// the event pending review. The status becomes pending no matter what
// it was before: resubmitting while pending refreshes the staged data,
// and resubmitting after a decision reopens the request.
func (w *Workflow) SubmitUpdate(ctx context.Context, ident authz.Identity, eventID primitive.ObjectID, patch models.EventDetailsPatch) (models.EventDetails, error) {
	if d := eventpolicy.Authorize(ident, eventpolicy.OpWriteDetails, eventpolicy.ResourceRef{EventID: eventID}); !d.Allowed {
		return models.EventDetails{}, denyError(d)
	}

	var updated models.EventDetails
	err := txn.WithTransaction(ctx, w.client, func(ctx context.Context) error {
		var err error
		updated, err = w.details.ApplyPatch(ctx, eventID, patch)
		if err != nil {
			return err
		}
		return w.events.UpdateReviewStatus(ctx, eventID, models.ReviewPending)
	})
	if err != nil {
		return models.EventDetails{}, err
	}

	w.logAudit(ctx, ident, models.AuditDetailsSubmit, eventID, "")
	return updated, nil
}

// Decide applies an admin verdict to an event's pending review request.
// Approve copies the staged details onto the event's published fields
// and both the copy and the status change land in one atomic unit.
//
// The pending check happens inside the transaction: if the request is
// no longer pending by then (already decided, or never submitted), the
// call succeeds without applying anything and reports applied=false.
func (w *Workflow) Decide(ctx context.Context, ident authz.Identity, eventID primitive.ObjectID, decision Decision) (applied bool, err error) {
	if d := eventpolicy.Authorize(ident, eventpolicy.OpDecideReview, eventpolicy.ResourceRef{EventID: eventID}); !d.Allowed {
		return false, denyError(d)
	}

	err = txn.WithTransaction(ctx, w.client, func(ctx context.Context) error {
		ev, err := w.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if !ParseStatus(ev.ReviewRequestStatus).Decidable() {
			return nil
		}

		if decision == Approve {
			staged, err := w.details.GetByEventID(ctx, eventID)
			if err != nil {
				return err
			}
			if err := w.events.PublishDetails(ctx, eventID, staged); err != nil {
				return err
			}
		}
		if err := w.events.UpdateReviewStatus(ctx, eventID, decision.Outcome().String()); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		action := models.AuditReviewRejected
		if decision == Approve {
			action = models.AuditReviewApproved
		}
		w.logAudit(ctx, ident, action, eventID, "")
	}
	return applied, nil
}

// Status returns an event's current review status.
func (w *Workflow) Status(ctx context.Context, eventID primitive.ObjectID) (Status, error) {
	ev, err := w.events.GetByID(ctx, eventID)
	if err != nil {
		return StatusNone, err
	}
	return ParseStatus(ev.ReviewRequestStatus), nil
}

func (w *Workflow) logAudit(ctx context.Context, ident authz.Identity, action string, eventID primitive.ObjectID, detail string) {
	entry := models.AuditEvent{Action: action, EventID: eventID, Detail: detail}
	switch id := ident.(type) {
	case authz.Admin:
		entry.ActorID = id.UserID.Hex()
	case authz.Coordinator:
		entry.ActorID = id.UserID.Hex()
		entry.Actor = id.Email
	}
	w.audit.Log(ctx, entry)
}
