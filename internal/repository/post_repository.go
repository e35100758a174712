package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sociogram/internal/apperrors"
	"sociogram/internal/database"
	"sociogram/internal/models"
)

type PostRepositoryImpl struct {
	collection *mongo.Collection
}

func NewPostRepository(db *database.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{collection: db.Collection(database.PostsCollection)}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = map[string]bool{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("post %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) GetAll(ctx context.Context) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query user posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode user posts: %w", err)
	}

	return posts, nil
}

// ReplaceLikes overwrites the likes map wholesale. Two concurrent toggles on
// the same post are a last-write-wins race; no concurrency token is used.
func (r *PostRepositoryImpl) ReplaceLikes(ctx context.Context, id primitive.ObjectID, likes map[string]bool) (*models.Post, error) {
	update := bson.M{"$set": bson.M{"likes": likes, "updatedAt": time.Now()}}

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("post %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to update likes: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("post %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to append comment: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) UpdatePicturePath(ctx context.Context, id primitive.ObjectID, picturePath string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"picturePath": picturePath, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to update post picture: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("post %s", id.Hex())
	}

	return nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("post %s", id.Hex())
	}

	return nil
}

var _ PostRepository = (*PostRepositoryImpl)(nil)
