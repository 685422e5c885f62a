package events_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/features/events"
	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*events.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := events.NewHandler(db, uierrors.NewErrorLogger(zap.NewNop()), nil, zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func postForm(target string, values url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestServeCreate_CreatesEventAndDetails(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := postForm("/events", url.Values{
		"name":              {"Robotics Challenge"},
		"slug":              {"robotics-challenge"},
		"coordinator_email": {"Coordinator@Example.COM"},
	}, testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.ServeCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	var ev bson.M
	if err := fx.DB().Collection("events").FindOne(ctx, bson.M{"slug": "robotics-challenge"}).Decode(&ev); err != nil {
		t.Fatalf("created event not found: %v", err)
	}
	if ev["coordinator_email"] != "coordinator@example.com" {
		t.Errorf("coordinator email not normalized: %v", ev["coordinator_email"])
	}
	if ev["is_hidden"] != true {
		t.Errorf("new event should start hidden")
	}
	if ev["review_request_status"] != "none" {
		t.Errorf("review status: got %v, want none", ev["review_request_status"])
	}

	n, err := fx.DB().Collection("event_details").CountDocuments(ctx, bson.M{"event_id": ev["_id"]})
	if err != nil {
		t.Fatalf("count details: %v", err)
	}
	if n != 1 {
		t.Errorf("details records: got %d, want 1", n)
	}
}

func TestServeCreate_RejectsInvalidSlug(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := postForm("/events", url.Values{
		"name":              {"Bad Slug Event"},
		"slug":              {"Not A Slug!"},
		"coordinator_email": {"c@example.com"},
	}, testutil.AdminUser())
	rec := httptest.NewRecorder()

	// The validation failure path re-renders the form, which may panic
	// when the template engine is not initialized in tests.
	func() {
		defer func() { recover() }()
		h.ServeCreate(rec, req)
	}()

	n, err := fx.DB().Collection("events").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	if n != 0 {
		t.Errorf("invalid form created %d events", n)
	}
}

func TestServeDelete_CascadesToDetailsAndSchedule(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "science-fair", "Science Fair", "sf@example.com")
	keep := fx.CreateEvent(ctx, "math-olympiad", "Math Olympiad", "mo@example.com")
	fx.CreateEventDetails(ctx, ev.ID, "staged text")
	fx.CreateEventDetails(ctx, keep.ID, "other staged text")
	fx.CreateScheduleEntry(ctx, ev.ID, "Round 1", time.Now().Add(24*time.Hour))
	fx.CreateScheduleEntry(ctx, ev.ID, "Round 2", time.Now().Add(48*time.Hour))
	fx.CreateScheduleEntry(ctx, keep.ID, "Opening", time.Now().Add(24*time.Hour))

	req := postForm("/events/"+ev.ID.Hex()+"/delete", url.Values{}, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	h.ServeDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	for coll, want := range map[string]int64{"events": 1, "event_details": 1, "schedule_entries": 1} {
		n, err := fx.DB().Collection(coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != want {
			t.Errorf("%s remaining: got %d, want %d", coll, n, want)
		}
	}
}

func TestServeSetVisibility(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "chess-open", "Chess Open", "chess@example.com")

	req := postForm("/events/"+ev.ID.Hex()+"/visibility", url.Values{"hidden": {"true"}}, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	h.ServeSetVisibility(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	var got bson.M
	if err := fx.DB().Collection("events").FindOne(ctx, bson.M{"_id": ev.ID}).Decode(&got); err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if got["is_hidden"] != true {
		t.Errorf("event was not hidden")
	}
}

func TestServeSetRegistration_RejectsUnknownStatus(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "quiz-bowl", "Quiz Bowl", "quiz@example.com")

	req := postForm("/events/"+ev.ID.Hex()+"/registration", url.Values{"status": {"maybe"}}, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.ServeSetRegistration(rec, req)
	}()

	var got bson.M
	if err := fx.DB().Collection("events").FindOne(ctx, bson.M{"_id": ev.ID}).Decode(&got); err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if got["registration_status"] != "upcoming" {
		t.Errorf("registration status changed to %v", got["registration_status"])
	}
}
