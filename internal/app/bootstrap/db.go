// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/eventhub/internal/app/store/oauthstate"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and verifies it with a
// ping before startup continues.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes the stores rely on. All creations
// are idempotent; existing matching indexes are left alone.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	indexes := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{"events", mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_events_slug"),
		}},
		{"events", mongo.IndexModel{
			Keys:    bson.D{{Key: "coordinator_email", Value: 1}},
			Options: options.Index().SetName("idx_events_coordinator"),
		}},
		{"events", mongo.IndexModel{
			Keys:    bson.D{{Key: "review_request_status", Value: 1}},
			Options: options.Index().SetName("idx_events_review_status"),
		}},
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "login_id_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_login_ci"),
		}},
		{"event_details", mongo.IndexModel{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_details_event"),
		}},
		{"schedule_entries", mongo.IndexModel{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "starts_at", Value: 1}},
			Options: options.Index().SetName("idx_schedule_event_start"),
		}},
		{"audit_events", mongo.IndexModel{
			Keys:    bson.D{{Key: "at", Value: -1}},
			Options: options.Index().SetName("idx_audit_at"),
		}},
	}

	for _, ix := range indexes {
		if _, err := db.Collection(ix.coll).Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("create index on %s: %w", ix.coll, err)
		}
	}

	if err := oauthstate.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("oauth state indexes: %w", err)
	}

	logger.Info("database indexes ensured")
	return nil
}
