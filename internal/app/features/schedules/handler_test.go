package schedules_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/eventhub/internal/app/features/errors"
	"github.com/dalemusser/eventhub/internal/app/features/schedules"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*schedules.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := schedules.NewHandler(db, uierrors.NewErrorLogger(zap.NewNop()), nil, zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func postForm(target string, values url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestServeCreate_CoordinatorOwnEvent(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")

	req := postForm("/events/"+ev.ID.Hex()+"/schedule", url.Values{
		"title":     {"Qualifying Round"},
		"venue":     {"Hall B"},
		"starts_at": {"2026-09-12T09:00"},
		"ends_at":   {"2026-09-12T12:00"},
	}, testutil.CoordinatorUser("coord@example.com"))
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	h.ServeCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}

	var entry bson.M
	err := fx.DB().Collection("schedule_entries").FindOne(ctx, bson.M{"event_id": ev.ID}).Decode(&entry)
	if err != nil {
		t.Fatalf("created entry not found: %v", err)
	}
	if entry["title"] != "Qualifying Round" {
		t.Errorf("title: got %v", entry["title"])
	}
}

func TestServeCreate_OtherCoordinatorForbidden(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")
	fx.CreateEvent(ctx, "chess", "Chess Open", "other@example.com")

	req := postForm("/events/"+ev.ID.Hex()+"/schedule", url.Values{
		"title":     {"Sneaky Round"},
		"starts_at": {"2026-09-12T09:00"},
	}, testutil.CoordinatorUser("other@example.com"))
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	// The forbidden path renders an error page, which may panic when
	// the template engine is not initialized in tests.
	func() {
		defer func() { recover() }()
		h.ServeCreate(rec, req)
	}()

	n, err := fx.DB().Collection("schedule_entries").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if n != 0 {
		t.Errorf("forbidden request created %d entries", n)
	}
}

func TestServeCreate_RejectsEndBeforeStart(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")

	req := postForm("/events/"+ev.ID.Hex()+"/schedule", url.Values{
		"title":     {"Backwards Round"},
		"starts_at": {"2026-09-12T12:00"},
		"ends_at":   {"2026-09-12T09:00"},
	}, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.ServeCreate(rec, req)
	}()

	n, err := fx.DB().Collection("schedule_entries").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if n != 0 {
		t.Errorf("invalid time window created %d entries", n)
	}
}

func TestServeDelete_EntryScopedToEvent(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "coord@example.com")
	other := fx.CreateEvent(ctx, "chess", "Chess Open", "other@example.com")
	entry := fx.CreateScheduleEntry(ctx, other.ID, "Opening", time.Now().Add(24*time.Hour))

	// Address the other event's entry through this event's path.
	req := postForm("/events/"+ev.ID.Hex()+"/schedule/"+entry.ID.Hex()+"/delete", url.Values{}, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "eventID", ev.ID.Hex())
	req = testutil.WithChiURLParam(req, "entryID", entry.ID.Hex())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.ServeDelete(rec, req)
	}()

	n, err := fx.DB().Collection("schedule_entries").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if n != 1 {
		t.Errorf("cross-event delete removed the entry")
	}
}
