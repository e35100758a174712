package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"sociogram/internal/apperrors"
	"sociogram/internal/models"
	"sociogram/internal/repository"
)

type UserService interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	GetFriends(ctx context.Context, userID string) ([]models.UserBrief, error)
	ToggleFriend(ctx context.Context, userID, friendID string) ([]models.UserBrief, error)
	UpdateSocialLinks(ctx context.Context, userID, twitter, linkedin string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	media    MediaService
}

func NewUserService(userRepo repository.UserRepository, media MediaService) UserService {
	return &userService{
		userRepo: userRepo,
		media:    media,
	}
}

func parseObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("invalid id %q", hex)
	}
	return id, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PicturePath = s.media.ResolveURL(ctx, user.PicturePath)
	return user, nil
}

func (s *userService) GetFriends(ctx context.Context, userID string) ([]models.UserBrief, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.formattedFriends(ctx, user)
}

func (s *userService) ToggleFriend(ctx context.Context, userID, friendID string) ([]models.UserBrief, error) {
	if userID == friendID {
		return nil, apperrors.Validation("cannot friend yourself")
	}

	id, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	fid, err := parseObjectID(friendID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.ToggleFriend(ctx, id, fid)
	if err != nil {
		return nil, err
	}

	return s.formattedFriends(ctx, user)
}

func (s *userService) UpdateSocialLinks(ctx context.Context, userID, twitter, linkedin string) (*models.User, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}

	return s.userRepo.UpdateSocialLinks(ctx, id, twitter, linkedin)
}

// formattedFriends resolves the friend id list to restricted projections with
// displayable picture URLs. Dangling ids are dropped by the repository.
func (s *userService) formattedFriends(ctx context.Context, user *models.User) ([]models.UserBrief, error) {
	briefs, err := s.userRepo.GetBriefs(ctx, user.Friends)
	if err != nil {
		return nil, err
	}

	for i := range briefs {
		briefs[i].PicturePath = s.media.ResolveURL(ctx, briefs[i].PicturePath)
	}

	return briefs, nil
}
