package publicapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/features/publicapi"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*publicapi.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return publicapi.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestServeEvents_ExcludesHidden(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "c@x.com")
	fx.CreateHiddenEvent(ctx, "secret", "Secret Event", "s@x.com")

	req := httptest.NewRequest("GET", "/api/events", nil)
	rec := httptest.NewRecorder()
	h.ServeEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type: got %q", ct)
	}

	var body struct {
		Events []struct {
			Slug string `json:"slug"`
		} `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Events) != 1 || body.Events[0].Slug != "robotics" {
		t.Errorf("events: got %+v, want only robotics", body.Events)
	}
}

func TestServeEvent_HiddenIsNotFound(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateHiddenEvent(ctx, "secret", "Secret Event", "s@x.com")

	req := httptest.NewRequest("GET", "/api/events/secret", nil)
	req = testutil.WithChiURLParam(req, "slug", "secret")
	rec := httptest.NewRecorder()
	h.ServeEvent(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestServeEvent_OmitsStagedDetails(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "c@x.com")
	fx.CreateEventDetails(ctx, ev.ID, "staged only, never approved")
	fx.CreateScheduleEntry(ctx, ev.ID, "Qualifier", time.Now().Add(24*time.Hour))

	// Publish a different description directly onto the event.
	_, err := fx.DB().Collection("events").UpdateByID(ctx, ev.ID,
		bson.M{"$set": bson.M{"description": "published copy"}})
	if err != nil {
		t.Fatalf("publish description: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/events/robotics", nil)
	req = testutil.WithChiURLParam(req, "slug", "robotics")
	rec := httptest.NewRecorder()
	h.ServeEvent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, "staged only") {
		t.Errorf("staged details leaked into the public API: %s", body)
	}
	if !strings.Contains(body, "published copy") {
		t.Errorf("published description missing: %s", body)
	}
	if !strings.Contains(body, "Qualifier") {
		t.Errorf("schedule missing: %s", body)
	}
}

func TestServeSchedules_PagesAcrossVisibleEvents(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	visible := fx.CreateEvent(ctx, "robotics", "Robotics Challenge", "c@x.com")
	hidden := fx.CreateHiddenEvent(ctx, "secret", "Secret Event", "s@x.com")
	fx.CreateScheduleEntry(ctx, visible.ID, "Public Round", time.Now().Add(24*time.Hour))
	fx.CreateScheduleEntry(ctx, hidden.ID, "Hidden Round", time.Now().Add(24*time.Hour))

	req := httptest.NewRequest("GET", "/api/schedules", nil)
	rec := httptest.NewRecorder()
	h.ServeSchedules(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Schedules []struct {
			EventSlug string `json:"event_slug"`
			Title     string `json:"title"`
		} `json:"schedules"`
		Page    int  `json:"page"`
		HasNext bool `json:"has_next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Schedules) != 1 {
		t.Fatalf("schedules: got %d entries, want 1", len(body.Schedules))
	}
	if body.Schedules[0].Title != "Public Round" || body.Schedules[0].EventSlug != "robotics" {
		t.Errorf("schedule entry: got %+v", body.Schedules[0])
	}
	if body.Page != 1 || body.HasNext {
		t.Errorf("paging: page=%d has_next=%v", body.Page, body.HasNext)
	}
}
