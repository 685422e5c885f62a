package reviews_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/app/features/reviews"
	detailsstore "github.com/dalemusser/eventhub/internal/app/store/eventdetails"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/app/system/review"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*reviews.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	wf := review.NewWorkflow(db.Client(), eventstore.New(db), detailsstore.New(db), nil, zap.NewNop())
	h := reviews.NewHandler(db, wf, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func markPending(t *testing.T, fx *testutil.Fixtures, ctx context.Context, id primitive.ObjectID) {
	t.Helper()
	_, err := fx.DB().Collection("events").UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"review_request_status": "pending"}})
	if err != nil {
		t.Fatalf("mark pending: %v", err)
	}
}

func postDecision(h *reviews.Handler, target, action string, eventID primitive.ObjectID, user testutil.TestUser) *httptest.ResponseRecorder {
	req := testutil.NewAuthenticatedRequest("POST", target, user)
	req = testutil.WithChiURLParam(req, "eventID", eventID.Hex())
	rec := httptest.NewRecorder()
	if action == "approve" {
		h.ServeApprove(rec, req)
	} else {
		h.ServeReject(rec, req)
	}
	return rec
}

func TestServeApprove_PublishesStagedDetails(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")
	fx.CreateEventDetails(ctx, ev.ID, "<p>Staged copy</p>")
	markPending(t, fx, ctx, ev.ID)

	rec := postDecision(h, "/reviews/"+ev.ID.Hex()+"/approve", "approve", ev.ID, testutil.AdminUser())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	var event bson.M
	if err := fx.DB().Collection("events").FindOne(ctx, bson.M{"_id": ev.ID}).Decode(&event); err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if event["review_request_status"] != "approved" {
		t.Errorf("review status: got %v, want approved", event["review_request_status"])
	}
	if event["description"] != "<p>Staged copy</p>" {
		t.Errorf("staged details not published: %v", event["description"])
	}
}

func TestServeReject_KeepsPublishedUntouched(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")
	fx.CreateEventDetails(ctx, ev.ID, "<p>Staged copy</p>")
	markPending(t, fx, ctx, ev.ID)

	rec := postDecision(h, "/reviews/"+ev.ID.Hex()+"/reject", "reject", ev.ID, testutil.AdminUser())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	var event bson.M
	if err := fx.DB().Collection("events").FindOne(ctx, bson.M{"_id": ev.ID}).Decode(&event); err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if event["review_request_status"] != "rejected" {
		t.Errorf("review status: got %v, want rejected", event["review_request_status"])
	}
	if event["description"] != nil {
		t.Errorf("reject published the staged details: %v", event["description"])
	}
}

func TestServeApprove_NonPendingIsNoOp(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Never submitted: review status stays none and nothing publishes.
	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")
	fx.CreateEventDetails(ctx, ev.ID, "<p>Staged copy</p>")

	rec := postDecision(h, "/reviews/"+ev.ID.Hex()+"/approve", "approve", ev.ID, testutil.AdminUser())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	var event bson.M
	if err := fx.DB().Collection("events").FindOne(ctx, bson.M{"_id": ev.ID}).Decode(&event); err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if event["review_request_status"] != "none" {
		t.Errorf("no-op decision changed status to %v", event["review_request_status"])
	}
	if event["description"] != nil {
		t.Errorf("no-op decision published details")
	}
}

func TestServeApprove_CoordinatorForbidden(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")
	fx.CreateEventDetails(ctx, ev.ID, "<p>Staged copy</p>")
	markPending(t, fx, ctx, ev.ID)

	req := testutil.NewAuthenticatedRequest("POST", "/reviews/"+ev.ID.Hex()+"/approve",
		testutil.CoordinatorUser("coord@example.com"))
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	// The forbidden path renders an error page, which may panic when
	// the template engine is not initialized in tests.
	func() {
		defer func() { recover() }()
		h.ServeApprove(rec, req)
	}()

	var event bson.M
	if err := fx.DB().Collection("events").FindOne(ctx, bson.M{"_id": ev.ID}).Decode(&event); err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if event["review_request_status"] != "pending" {
		t.Errorf("coordinator decided a review: status %v", event["review_request_status"])
	}
}
