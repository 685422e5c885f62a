package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The email address users type to log in

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a staff account: superadmin, admin, or coordinator.
// Coordinators do not carry an event reference here; their event is
// resolved per request by matching Event.CoordinatorEmail to LoginID.
type User struct {
	ID           primitive.ObjectID `bson:"_id"`
	FullName     string             `bson:"full_name"`
	FullNameCI   string             `bson:"full_name_ci"`
	LoginID      string             `bson:"login_id"`
	LoginIDCI    string             `bson:"login_id_ci"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	Role         string             `bson:"role"`   // superadmin | admin | coordinator
	Status       string             `bson:"status"` // active | disabled
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}
