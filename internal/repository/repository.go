package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sociogram/internal/database"
	"sociogram/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBriefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserBrief, error)
	ToggleFriend(ctx context.Context, id, friendID primitive.ObjectID) (*models.User, error)
	UpdateSocialLinks(ctx context.Context, id primitive.ObjectID, twitter, linkedin string) (*models.User, error)
	UpdatePicturePath(ctx context.Context, id primitive.ObjectID, picturePath string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetAll(ctx context.Context) ([]models.Post, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	ReplaceLikes(ctx context.Context, id primitive.ObjectID, likes map[string]bool) (*models.Post, error)
	AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error)
	UpdatePicturePath(ctx context.Context, id primitive.ObjectID, picturePath string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	ListVisible(ctx context.Context, now time.Time) ([]models.Story, error)
	ListExpiredBetween(ctx context.Context, from, to time.Time) ([]models.Story, error)
}

type Repository struct {
	User  UserRepository
	Post  PostRepository
	Story StoryRepository
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{
		User:  NewUserRepository(db),
		Post:  NewPostRepository(db),
		Story: NewStoryRepository(db),
	}
}
