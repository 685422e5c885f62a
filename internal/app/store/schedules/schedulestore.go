package schedulestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("schedule entry not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("schedule_entries")}
}

func (s *Store) Create(ctx context.Context, e models.ScheduleEntry) (models.ScheduleEntry, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.ScheduleEntry{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ScheduleEntry, error) {
	var e models.ScheduleEntry
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return models.ScheduleEntry{}, ErrNotFound
	}
	if err != nil {
		return models.ScheduleEntry{}, err
	}
	return e, nil
}

// Update modifies an entry's fields. EventID is never reassigned.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, e models.ScheduleEntry) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if e.Title != "" {
		set["title"] = e.Title
	}
	if e.Venue != "" {
		set["venue"] = e.Venue
	}
	if !e.StartsAt.IsZero() {
		set["starts_at"] = e.StartsAt
	}
	if !e.EndsAt.IsZero() {
		set["ends_at"] = e.EndsAt
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

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByEvent returns an event's schedule entries ordered by start time.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.ScheduleEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ScheduleEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPage returns a page of entries for the given events, ordered by
// start time. Used by the public API (limit/offset pagination).
func (s *Store) ListPage(ctx context.Context, eventIDs []primitive.ObjectID, skip, limit int64) ([]models.ScheduleEntry, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ScheduleEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByEvent removes all entries for an event (cascade on event delete).
// Returns the number of documents deleted.
func (s *Store) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByEvents returns the number of entries across the given events.
func (s *Store) CountByEvents(ctx context.Context, eventIDs []primitive.ObjectID) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}})
}

// CountByEvent returns the number of entries for one event.
func (s *Store) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}
