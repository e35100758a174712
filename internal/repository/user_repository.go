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

type UserRepositoryImpl struct {
	collection *mongo.Collection
}

func NewUserRepository(db *database.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{collection: db.Collection(database.UsersCollection)}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Validation("user with email %s already exists", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("user %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("user with email %s", email)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetBriefs returns restricted projections for the given ids. Missing ids are
// silently dropped, so a dangling friend reference never fails a listing.
func (r *UserRepositoryImpl) GetBriefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserBrief, error) {
	if len(ids) == 0 {
		return []models.UserBrief{}, nil
	}

	projection := bson.M{
		"firstName":   1,
		"lastName":    1,
		"occupation":  1,
		"location":    1,
		"picturePath": 1,
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("failed to query user briefs: %w", err)
	}
	defer cursor.Close(ctx)

	briefs := []models.UserBrief{}
	if err := cursor.All(ctx, &briefs); err != nil {
		return nil, fmt.Errorf("failed to decode user briefs: %w", err)
	}

	return briefs, nil
}

// ToggleFriend adds or removes the friendship on both sides and returns the
// updated user.
func (r *UserRepositoryImpl) ToggleFriend(ctx context.Context, id, friendID primitive.ObjectID) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.GetByID(ctx, friendID); err != nil {
		return nil, err
	}

	isFriend := false
	for _, fid := range user.Friends {
		if fid == friendID {
			isFriend = true
			break
		}
	}

	op := "$addToSet"
	if isFriend {
		op = "$pull"
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{op: bson.M{"friends": friendID}})
	if err != nil {
		return nil, fmt.Errorf("failed to update friends: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": friendID}, bson.M{op: bson.M{"friends": id}})
	if err != nil {
		return nil, fmt.Errorf("failed to update reciprocal friends: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepositoryImpl) UpdateSocialLinks(ctx context.Context, id primitive.ObjectID, twitter, linkedin string) (*models.User, error) {
	update := bson.M{"$set": bson.M{
		"twitter":   twitter,
		"linkedin":  linkedin,
		"updatedAt": time.Now(),
	}}

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("user %s", id.Hex())
		}
		return nil, fmt.Errorf("failed to update social links: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) UpdatePicturePath(ctx context.Context, id primitive.ObjectID, picturePath string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"picturePath": picturePath, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to update picture path: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("user %s", id.Hex())
	}

	return nil
}

var _ UserRepository = (*UserRepositoryImpl)(nil)
