package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/config"
)

// Indexer is implemented by stores that own their index definitions.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("surgery-scheduler").
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return client, nil
}

// Migrate creates the indexes the stores rely on. It is idempotent.
func Migrate(ctx context.Context, log *zap.Logger, indexers ...Indexer) error {
	log.Info("running database migrations")
	start := time.Now()

	for _, idx := range indexers {
		if err := idx.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func Disconnect(ctx context.Context, client *mongo.Client, log *zap.Logger) {
	if err := client.Disconnect(ctx); err != nil {
		log.Warn("disconnecting from mongodb", zap.Error(err))
	}
}
