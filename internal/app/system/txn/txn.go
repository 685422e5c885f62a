// Package txn wraps multi-document work in a MongoDB transaction,
// falling back to sequential execution when the server does not support
// transactions (standalone mongod without a replica set).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction runs fn inside a session transaction. When the server
// rejects transactions entirely (IsNotSupported), fn is retried once
// outside a transaction; callers must order their writes so the
// fallback degrades safely (data first, flags last).
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are unavailable:
// 20 IllegalOperation (no replica set), 51 (illegal operation),
// 263 OperationNotSupportedInTransaction.
var notSupportedCodes = map[int32]struct{}{20: {}, 51: {}, 263: {}}

// IsNotSupported reports whether err means the MongoDB deployment
// cannot run transactions at all, as opposed to a transient or logical
// transaction failure.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		_, ok := notSupportedCodes[cmdErr.Code]
		return ok
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	hasSession := strings.Contains(msg, "session")
	if !hasTxn && !hasSession {
		return false
	}
	for _, kw := range []string{"replica set", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	// "transaction ... session" pairs show up on standalone servers.
	return hasTxn && hasSession
}
