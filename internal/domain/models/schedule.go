package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleEntry is one row of an event's schedule (a round, talk, or
// activity with a venue and a time window).
type ScheduleEntry struct {
	ID      primitive.ObjectID `bson:"_id"`
	EventID primitive.ObjectID `bson:"event_id"`

	Title    string    `bson:"title"`
	Venue    string    `bson:"venue,omitempty"`
	StartsAt time.Time `bson:"starts_at"`
	EndsAt   time.Time `bson:"ends_at,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
