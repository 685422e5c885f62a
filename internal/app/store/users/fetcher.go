package userstore

import (
	"context"

	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Fetcher adapts the user store to auth.UserFetcher so sessions
// re-resolve the account on every request. Disabled or deleted accounts
// resolve to nil and the request proceeds unauthenticated.
type Fetcher struct {
	store *Store
	log   *zap.Logger
}

func NewFetcher(store *Store, log *zap.Logger) *Fetcher {
	return &Fetcher{store: store, log: log}
}

func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		f.log.Warn("session carries malformed user ID", zap.String("user_id", userID))
		return nil
	}

	u, err := f.store.GetByID(ctx, oid)
	if err != nil {
		if err != ErrNotFound {
			f.log.Error("session user lookup failed", zap.Error(err))
		}
		return nil
	}
	if u.Status != "active" {
		return nil
	}

	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.LoginID,
		Role:    u.Role,
	}
}
