package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection reset by peer"), false},
		{"IllegalOperation code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"code 51", mongo.CommandError{Code: 51, Message: "Illegal operation"}, true},
		{"OperationNotSupportedInTransaction code 263", mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, true},
		{"unrelated command error", mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
		{"replica set message", errors.New("transaction failed because this is not a replica set member"), true},
		{"not supported message", errors.New("session operations are not supported on this server"), true},
		{"illegal operation message", errors.New("illegal operation during transaction"), true},
		{"transaction plus session pair", errors.New("cannot start transaction in current session state"), true},
		{"transaction keyword alone", errors.New("transaction failed"), false},
		{"keywords without txn context", errors.New("feature not supported"), false},
		{"case insensitive", errors.New("TRANSACTION FAILED on REPLICA SET"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// WithTransaction must apply fn's writes whether the server supports
// transactions (replica set) or not (standalone fallback). The write is
// an upsert because the fallback path runs fn a second time.
func TestWithTransaction_AppliesWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := WithTransaction(ctx, db.Client(), func(ctx context.Context) error {
		_, err := db.Collection("txn_probe").UpdateOne(ctx,
			bson.M{"_id": "probe"},
			bson.M{"$set": bson.M{"written": true}},
			options.Update().SetUpsert(true))
		return err
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}

	count, err := db.Collection("txn_probe").CountDocuments(ctx, bson.M{"_id": "probe", "written": true})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("probe documents = %d, want 1", count)
	}
}

func TestWithTransaction_PropagatesFnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sentinel := errors.New("boom")
	err := WithTransaction(ctx, db.Client(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("WithTransaction error = %v, want %v", err, sentinel)
	}
}
