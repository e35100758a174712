package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sociogram/internal/config"
)

const (
	UsersCollection   = "users"
	PostsCollection   = "posts"
	StoriesCollection = "stories"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func ConnectDB(cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}

	db := &DB{
		Client:   client,
		Database: client.Database(cfg.Mongo.DbNAME),
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("db", cfg.Mongo.DbNAME).Msg("connected to MongoDB")
	return db, nil
}

// EnsureIndexes creates the unique email index and the TTL index that lets
// MongoDB physically purge stories once expiresAt passes. The purge runs on
// the server's own sweep period (roughly a minute), so an expired story can
// linger in the collection; listings filter on expiresAt regardless.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	users := db.Collection(UsersCollection)
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}

	stories := db.Collection(StoriesCollection)
	_, err = stories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create stories TTL index: %w", err)
	}

	return nil
}

func (db *DB) Collection(name string) *mongo.Collection {
	return db.Database.Collection(name)
}

func (db *DB) CloseDB(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.Client == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return db.Client.Ping(ctx, nil)
}
