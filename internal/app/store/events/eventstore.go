package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateSlug = errors.New("an event with this slug already exists")
	ErrNotFound      = errors.New("event not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create inserts a new event. The slug is stored as given and is
// immutable afterwards (Update never touches it). Defaults: hidden,
// registration upcoming, review status none.
func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.NameCI = text.Fold(ev.Name)
	ev.CoordinatorEmail = normalize.Email(ev.CoordinatorEmail)
	if ev.RegistrationStatus == "" {
		ev.RegistrationStatus = models.RegistrationUpcoming
	}
	if ev.ReviewRequestStatus == "" {
		ev.ReviewRequestStatus = models.ReviewNone
	}
	ev.CreatedAt = now
	ev.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, ev)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Event{}, ErrDuplicateSlug
		}
		return models.Event{}, err
	}
	return ev, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var ev models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if err == mongo.ErrNoDocuments {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Event, error) {
	var ev models.Event
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&ev)
	if err == mongo.ErrNoDocuments {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// GetByCoordinatorEmail returns the event a coordinator email is bound
// to. Emails are stored normalized, so the argument is folded first.
func (s *Store) GetByCoordinatorEmail(ctx context.Context, email string) (models.Event, error) {
	var ev models.Event
	err := s.c.FindOne(ctx, bson.M{"coordinator_email": normalize.Email(email)}).Decode(&ev)
	if err == mongo.ErrNoDocuments {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// Update modifies the admin-editable fields. The slug and the review
// status are deliberately not updatable here: the slug is immutable and
// the review status only moves through the review workflow.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, ev models.Event) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if ev.Name != "" {
		set["name"] = ev.Name
		set["name_ci"] = text.Fold(ev.Name)
	}
	if ev.CoordinatorEmail != "" {
		set["coordinator_email"] = normalize.Email(ev.CoordinatorEmail)
	}
	if ev.RegistrationStatus != "" {
		set["registration_status"] = ev.RegistrationStatus
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetHidden flips the public visibility flag.
func (s *Store) SetHidden(ctx context.Context, id primitive.ObjectID, hidden bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_hidden":  hidden,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRegistrationStatus sets the registration state (upcoming/open/closed).
func (s *Store) SetRegistrationStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"registration_status": status,
		"updated_at":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateReviewStatus writes the review request status. Only the review
// workflow calls this; no other code path touches the field.
func (s *Store) UpdateReviewStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"review_request_status": status,
		"updated_at":            time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishDetails copies the staged coordinator-managed fields onto the
// event's public fields. Called only by the review workflow on approve,
// inside the same transaction as the status update.
func (s *Store) PublishDetails(ctx context.Context, id primitive.ObjectID, d models.EventDetails) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"description":               d.Description,
		"image_urls":                d.ImageURLs,
		"brochure_url":              d.BrochureURL,
		"whatsapp_url":              d.WhatsAppURL,
		"judging_criteria":          d.JudgingCriteria,
		"disqualification_criteria": d.DisqualificationCriteria,
		"materials_provided":        d.MaterialsProvided,
		"updated_at":                time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event by ID. Returns the number of documents
// deleted (0 or 1). Cascade removal of details and schedule entries is
// the caller's job (features/events wraps all three in a transaction).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SlugExists checks whether an event with the given slug exists.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Find returns events matching the filter; callers build pagination and
// sorting options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListVisible returns non-hidden events sorted by name, for the public API.
func (s *Store) ListVisible(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	return s.Find(ctx, bson.M{"is_hidden": false}, opts)
}

// Count returns the number of events matching the filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
