package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventDetails holds the coordinator-editable fields for one event.
// A record is created empty alongside every event and deleted with it.
// Values here are staged: they become publicly visible only when an
// admin approves the event's review request and they are copied onto
// the Event's Published* fields.
type EventDetails struct {
	ID      primitive.ObjectID `bson:"_id"`
	EventID primitive.ObjectID `bson:"event_id"` // unique

	Description              string   `bson:"description,omitempty"`
	ImageURLs                []string `bson:"image_urls,omitempty"`
	BrochureURL              string   `bson:"brochure_url,omitempty"`
	WhatsAppURL              string   `bson:"whatsapp_url,omitempty"`
	JudgingCriteria          string   `bson:"judging_criteria,omitempty"`
	DisqualificationCriteria string   `bson:"disqualification_criteria,omitempty"`
	MaterialsProvided        string   `bson:"materials_provided,omitempty"`

	UpdatedAt time.Time `bson:"updated_at"`
}

// EventDetailsPatch is a partial update submitted by a coordinator.
// Nil fields keep the stored value; non-nil fields overwrite it.
type EventDetailsPatch struct {
	Description              *string
	ImageURLs                *[]string
	BrochureURL              *string
	WhatsAppURL              *string
	JudgingCriteria          *string
	DisqualificationCriteria *string
	MaterialsProvided        *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p EventDetailsPatch) IsEmpty() bool {
	return p.Description == nil &&
		p.ImageURLs == nil &&
		p.BrochureURL == nil &&
		p.WhatsAppURL == nil &&
		p.JudgingCriteria == nil &&
		p.DisqualificationCriteria == nil &&
		p.MaterialsProvided == nil
}
