package eventstore_test

import (
	"testing"

	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureSlugIndex(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := db.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("failed to create slug index: %v", err)
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Event{
		Slug:             "robotics-2026",
		Name:             "Robotics Challenge",
		CoordinatorEmail: "Coord@Example.COM",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.CoordinatorEmail != "coord@example.com" {
		t.Errorf("coordinator email not normalized: %q", created.CoordinatorEmail)
	}
	if created.RegistrationStatus != models.RegistrationUpcoming {
		t.Errorf("default registration status: got %q", created.RegistrationStatus)
	}
	if created.ReviewRequestStatus != models.ReviewNone {
		t.Errorf("default review status: got %q", created.ReviewRequestStatus)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ensureSlugIndex(t, db)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Event{Slug: "dup", Name: "First", CoordinatorEmail: "a@x.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Event{Slug: "dup", Name: "Second", CoordinatorEmail: "b@x.com"})
	if err != eventstore.ErrDuplicateSlug {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestStore_GetBySlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "chess-open", "Chess Open", "c@x.com")

	got, err := store.GetBySlug(ctx, "chess-open")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if got.ID != ev.ID {
		t.Errorf("got wrong event: %v", got.ID)
	}

	if _, err := store.GetBySlug(ctx, "missing"); err != eventstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetByCoordinatorEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "quiz", "Quiz Night", "owner@example.com")

	// Lookup folds case before matching.
	got, err := store.GetByCoordinatorEmail(ctx, "Owner@Example.COM")
	if err != nil {
		t.Fatalf("GetByCoordinatorEmail failed: %v", err)
	}
	if got.ID != ev.ID {
		t.Errorf("got wrong event: %v", got.ID)
	}

	if _, err := store.GetByCoordinatorEmail(ctx, "nobody@example.com"); err != eventstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Update_SlugImmutable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "fixed-slug", "Old Name", "c@x.com")

	err := store.Update(ctx, ev.ID, models.Event{
		Slug:               "new-slug",
		Name:               "New Name",
		RegistrationStatus: models.RegistrationOpen,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Slug != "fixed-slug" {
		t.Errorf("slug changed to %q; slugs are immutable", got.Slug)
	}
	if got.Name != "New Name" {
		t.Errorf("name = %q", got.Name)
	}
	if got.RegistrationStatus != models.RegistrationOpen {
		t.Errorf("registration status = %q", got.RegistrationStatus)
	}
}

func TestStore_SetHidden_ListVisible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateEvent(ctx, "a", "Alpha", "a@x.com")
	fixtures.CreateEvent(ctx, "b", "Beta", "b@x.com")

	if err := store.SetHidden(ctx, a.ID, true); err != nil {
		t.Fatalf("SetHidden failed: %v", err)
	}

	visible, err := store.ListVisible(ctx)
	if err != nil {
		t.Fatalf("ListVisible failed: %v", err)
	}
	if len(visible) != 1 || visible[0].Slug != "b" {
		t.Errorf("visible events = %v", visible)
	}
}

func TestStore_PublishDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "expo", "Expo", "c@x.com")

	err := store.PublishDetails(ctx, ev.ID, models.EventDetails{
		Description: "Published copy",
		ImageURLs:   []string{"https://img.example.com/1.png"},
	})
	if err != nil {
		t.Fatalf("PublishDetails failed: %v", err)
	}

	got, err := store.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "Published copy" {
		t.Errorf("description = %q", got.Description)
	}
	if len(got.ImageURLs) != 1 {
		t.Errorf("image URLs = %v", got.ImageURLs)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := fixtures.CreateEvent(ctx, "gone", "Gone", "c@x.com")

	n, err := store.Delete(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d documents, want 1", n)
	}

	n, err = store.Delete(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Delete of missing event failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d documents, want 0", n)
	}
}
