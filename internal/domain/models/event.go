package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration status values for an event.
const (
	RegistrationUpcoming = "upcoming"
	RegistrationOpen     = "open"
	RegistrationClosed   = "closed"
)

// Review request status values as stored on the event record. The
// typed state machine over these lives in internal/app/system/review.
const (
	ReviewNone     = "none"
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Event is the primary resource. The Published* fields are the
// admin-approved, publicly visible copies of the coordinator-managed
// details; the staged versions live in EventDetails until approved.
type Event struct {
	ID               primitive.ObjectID `bson:"_id"`
	Slug             string             `bson:"slug"` // unique, immutable after creation
	Name             string             `bson:"name"`
	NameCI           string             `bson:"name_ci"`
	CoordinatorEmail string             `bson:"coordinator_email"`
	IsHidden         bool               `bson:"is_hidden"`

	// upcoming | open | closed
	RegistrationStatus string `bson:"registration_status"`

	// none | pending | approved | rejected (see system/review)
	ReviewRequestStatus string `bson:"review_request_status"`

	// Published coordinator-managed content (copied from EventDetails
	// on approval; never written by coordinators directly).
	Description              string   `bson:"description,omitempty"`
	ImageURLs                []string `bson:"image_urls,omitempty"`
	BrochureURL              string   `bson:"brochure_url,omitempty"`
	WhatsAppURL              string   `bson:"whatsapp_url,omitempty"`
	JudgingCriteria          string   `bson:"judging_criteria,omitempty"`
	DisqualificationCriteria string   `bson:"disqualification_criteria,omitempty"`
	MaterialsProvided        string   `bson:"materials_provided,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
