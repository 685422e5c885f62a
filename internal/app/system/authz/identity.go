package authz

import (
	"context"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Identity is the resolved calling identity, modeled as a tagged union
// so policy code can switch exhaustively instead of probing a nullable
// session object.
//
// A Coordinator identity is only as good as its event binding: EventID
// is resolved per request from the live event whose coordinator_email
// matches the user's login email. A coordinator whose email matches no
// event gets a zero EventID and fails every event-scoped check.
type Identity interface {
	isIdentity()
}

// Anonymous is the identity of an unauthenticated request.
type Anonymous struct{}

// Admin has full access within the event-management domain.
type Admin struct {
	UserID primitive.ObjectID
}

// Coordinator is scoped to exactly one event.
type Coordinator struct {
	UserID  primitive.ObjectID
	Email   string             // lowercased login email
	EventID primitive.ObjectID // zero when no event matches Email
}

func (Anonymous) isIdentity()   {}
func (Admin) isIdentity()       {}
func (Coordinator) isIdentity() {}

// IdentityFromRequest resolves the request's Identity.
//
// It never returns an error: a missing or malformed session, a DB
// failure, or a coordinator with no matching event all degrade to an
// identity that fails authorization, keeping the guard fail-closed.
func IdentityFromRequest(ctx context.Context, db *mongo.Database, r *http.Request) Identity {
	role, _, userID, ok := UserCtx(r)
	if !ok {
		return Anonymous{}
	}

	switch role {
	case "admin", "superadmin":
		return Admin{UserID: userID}
	case "coordinator":
		email, _ := UserEmail(r)
		email = normalize.Email(email)
		ident := Coordinator{UserID: userID, Email: email}
		if email == "" || db == nil {
			return ident
		}
		var ev struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		err := db.Collection("events").
			FindOne(ctx, bson.M{"coordinator_email": email}).
			Decode(&ev)
		if err == nil {
			ident.EventID = ev.ID
		}
		return ident
	}
	return Anonymous{}
}
