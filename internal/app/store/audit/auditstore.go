package auditstore

import (
	"context"
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

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event. Audit writes are best effort and never
// participate in the caller's transaction.
func (s *Store) Log(ctx context.Context, ev models.AuditEvent) error {
	ev.ID = primitive.NewObjectID()
	ev.At = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, ev)
	return err
}

// List returns the most recent audit events, newest first.
func (s *Store) List(ctx context.Context, limit int64) ([]models.AuditEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AuditEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByEvent returns audit events for a single event, newest first.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID, limit int64) ([]models.AuditEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AuditEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
