package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sociogram/internal/database"
	"sociogram/internal/models"
)

type StoryRepositoryImpl struct {
	collection *mongo.Collection
}

func NewStoryRepository(db *database.DB) *StoryRepositoryImpl {
	return &StoryRepositoryImpl{collection: db.Collection(database.StoriesCollection)}
}

func (r *StoryRepositoryImpl) Create(ctx context.Context, story *models.Story) error {
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, story)
	if err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}

	return nil
}

// ListVisible applies the visibility filter in the query regardless of
// whether the TTL monitor has physically purged lapsed documents yet.
func (r *StoryRepositoryImpl) ListVisible(ctx context.Context, now time.Time) ([]models.Story, error) {
	filter := bson.M{
		"archived":  false,
		"expiresAt": bson.M{"$gt": now},
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("failed to decode stories: %w", err)
	}

	return stories, nil
}

// ListExpiredBetween returns stories whose expiry lapsed inside (from, to].
// Used by the expiry announcer; documents already purged by the TTL monitor
// simply no longer show up, which is fine for an advisory broadcast.
func (r *StoryRepositoryImpl) ListExpiredBetween(ctx context.Context, from, to time.Time) ([]models.Story, error) {
	filter := bson.M{
		"archived":  false,
		"expiresAt": bson.M{"$gt": from, "$lte": to},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired stories: %w", err)
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("failed to decode expired stories: %w", err)
	}

	return stories, nil
}

var _ StoryRepository = (*StoryRepositoryImpl)(nil)
