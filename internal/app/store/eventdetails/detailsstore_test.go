package detailsstore_test

import (
	"testing"

	detailsstore "github.com/dalemusser/eventhub/internal/app/store/eventdetails"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string       { return &s }
func slicePtr(s []string) *[]string { return &s }

func TestStore_CreateEmpty_GetByEventID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := detailsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	created, err := store.CreateEmpty(ctx, eventID)
	if err != nil {
		t.Fatalf("CreateEmpty failed: %v", err)
	}
	if created.EventID != eventID {
		t.Errorf("EventID = %v", created.EventID)
	}

	got, err := store.GetByEventID(ctx, eventID)
	if err != nil {
		t.Fatalf("GetByEventID failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got wrong record: %v", got.ID)
	}

	if _, err := store.GetByEventID(ctx, primitive.NewObjectID()); err != detailsstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ApplyPatch_Merges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := detailsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	if _, err := store.CreateEmpty(ctx, eventID); err != nil {
		t.Fatalf("CreateEmpty failed: %v", err)
	}

	first, err := store.ApplyPatch(ctx, eventID, models.EventDetailsPatch{
		Description: strPtr("Initial description"),
		ImageURLs:   slicePtr([]string{"https://img.example.com/a.png"}),
	})
	if err != nil {
		t.Fatalf("first ApplyPatch failed: %v", err)
	}
	if first.Description != "Initial description" {
		t.Errorf("description = %q", first.Description)
	}

	// Nil fields keep stored values; set fields overwrite.
	second, err := store.ApplyPatch(ctx, eventID, models.EventDetailsPatch{
		BrochureURL: strPtr("https://example.com/brochure.pdf"),
	})
	if err != nil {
		t.Fatalf("second ApplyPatch failed: %v", err)
	}
	if second.Description != "Initial description" {
		t.Errorf("description lost in merge: %q", second.Description)
	}
	if len(second.ImageURLs) != 1 {
		t.Errorf("image URLs lost in merge: %v", second.ImageURLs)
	}
	if second.BrochureURL != "https://example.com/brochure.pdf" {
		t.Errorf("brochure URL = %q", second.BrochureURL)
	}
}

func TestStore_ApplyPatch_EmptyStringClears(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := detailsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	if _, err := store.CreateEmpty(ctx, eventID); err != nil {
		t.Fatalf("CreateEmpty failed: %v", err)
	}
	if _, err := store.ApplyPatch(ctx, eventID, models.EventDetailsPatch{
		Description: strPtr("something"),
	}); err != nil {
		t.Fatalf("ApplyPatch failed: %v", err)
	}

	// A present-but-empty value clears the field; that is different from
	// an absent (nil) field, which leaves it alone.
	got, err := store.ApplyPatch(ctx, eventID, models.EventDetailsPatch{
		Description: strPtr(""),
	})
	if err != nil {
		t.Fatalf("clearing ApplyPatch failed: %v", err)
	}
	if got.Description != "" {
		t.Errorf("description = %q, want cleared", got.Description)
	}
}

func TestStore_ApplyPatch_MissingEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := detailsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.ApplyPatch(ctx, primitive.NewObjectID(), models.EventDetailsPatch{
		Description: strPtr("orphan"),
	})
	if err != detailsstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteByEventID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := detailsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID()
	if _, err := store.CreateEmpty(ctx, eventID); err != nil {
		t.Fatalf("CreateEmpty failed: %v", err)
	}

	n, err := store.DeleteByEventID(ctx, eventID)
	if err != nil {
		t.Fatalf("DeleteByEventID failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d documents, want 1", n)
	}
	if _, err := store.GetByEventID(ctx, eventID); err != detailsstore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
