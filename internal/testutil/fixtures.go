package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls stack: an existing route context gains the new parameter.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEvent creates a test event with the given slug, name, and
// coordinator email. Visible by default, registration upcoming, no
// review request.
func (f *Fixtures) CreateEvent(ctx context.Context, slug, name, coordinatorEmail string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:                  primitive.NewObjectID(),
		Slug:                slug,
		Name:                name,
		NameCI:              text.Fold(name),
		CoordinatorEmail:    coordinatorEmail,
		RegistrationStatus:  models.RegistrationUpcoming,
		ReviewRequestStatus: models.ReviewNone,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	_, err := f.db.Collection("events").InsertOne(ctx, ev)
	if err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}

	return ev
}

// CreateHiddenEvent creates a test event with the hidden flag set.
func (f *Fixtures) CreateHiddenEvent(ctx context.Context, slug, name, coordinatorEmail string) models.Event {
	f.t.Helper()

	ev := f.CreateEvent(ctx, slug, name, coordinatorEmail)
	_, err := f.db.Collection("events").UpdateByID(ctx, ev.ID,
		map[string]any{"$set": map[string]any{"is_hidden": true}})
	if err != nil {
		f.t.Fatalf("failed to hide test event: %v", err)
	}
	ev.IsHidden = true
	return ev
}

// CreateEventDetails creates the staged details record for an event.
func (f *Fixtures) CreateEventDetails(ctx context.Context, eventID primitive.ObjectID, description string) models.EventDetails {
	f.t.Helper()

	d := models.EventDetails{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		Description: description,
		UpdatedAt:   time.Now().UTC(),
	}

	_, err := f.db.Collection("event_details").InsertOne(ctx, d)
	if err != nil {
		f.t.Fatalf("failed to create test event details: %v", err)
	}

	return d
}

// CreateScheduleEntry creates a schedule entry for an event.
func (f *Fixtures) CreateScheduleEntry(ctx context.Context, eventID primitive.ObjectID, title string, startsAt time.Time) models.ScheduleEntry {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.ScheduleEntry{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		Title:     title,
		Venue:     "Main Hall",
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("schedule_entries").InsertOne(ctx, e)
	if err != nil {
		f.t.Fatalf("failed to create test schedule entry: %v", err)
	}

	return e
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, loginID, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		LoginID:    loginID,
		LoginIDCI:  text.Fold(loginID),
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, loginID string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, loginID, "admin")
}

// CreateCoordinator creates a test coordinator user.
func (f *Fixtures) CreateCoordinator(ctx context.Context, fullName, loginID string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, loginID, "coordinator")
}

// CreateDisabledUser creates a test user with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, loginID string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, loginID, "coordinator")
	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		map[string]any{"$set": map[string]any{"status": "disabled"}})
	if err != nil {
		f.t.Fatalf("failed to disable test user: %v", err)
	}
	u.Status = "disabled"
	return u
}
