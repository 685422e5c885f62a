package detailsstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("event details not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_details")}
}

// CreateEmpty inserts the empty details record that accompanies every
// new event. One record per event (unique index on event_id).
func (s *Store) CreateEmpty(ctx context.Context, eventID primitive.ObjectID) (models.EventDetails, error) {
	d := models.EventDetails{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.EventDetails{}, err
	}
	return d, nil
}

func (s *Store) GetByEventID(ctx context.Context, eventID primitive.ObjectID) (models.EventDetails, error) {
	var d models.EventDetails
	err := s.c.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return models.EventDetails{}, ErrNotFound
	}
	if err != nil {
		return models.EventDetails{}, err
	}
	return d, nil
}

// ApplyPatch merge-writes the provided fields: non-nil patch fields
// overwrite, nil fields keep the stored value. Returns the updated
// snapshot. Applying the same patch twice yields the same document.
func (s *Store) ApplyPatch(ctx context.Context, eventID primitive.ObjectID, p models.EventDetailsPatch) (models.EventDetails, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ImageURLs != nil {
		set["image_urls"] = *p.ImageURLs
	}
	if p.BrochureURL != nil {
		set["brochure_url"] = *p.BrochureURL
	}
	if p.WhatsAppURL != nil {
		set["whatsapp_url"] = *p.WhatsAppURL
	}
	if p.JudgingCriteria != nil {
		set["judging_criteria"] = *p.JudgingCriteria
	}
	if p.DisqualificationCriteria != nil {
		set["disqualification_criteria"] = *p.DisqualificationCriteria
	}
	if p.MaterialsProvided != nil {
		set["materials_provided"] = *p.MaterialsProvided
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"event_id": eventID}, bson.M{"$set": set})
	if err != nil {
		return models.EventDetails{}, err
	}
	if res.MatchedCount == 0 {
		return models.EventDetails{}, ErrNotFound
	}
	return s.GetByEventID(ctx, eventID)
}

// DeleteByEventID removes the details record when its event is deleted.
func (s *Store) DeleteByEventID(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
