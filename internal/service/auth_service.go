package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"sociogram/internal/apperrors"
	"sociogram/internal/config"
	"sociogram/internal/models"
	"sociogram/internal/repository"
)

type RegisterRequest struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Location   string
	Occupation string
	Twitter    string
	LinkedIn   string
	// Optional profile picture, reconciled out-of-band like post media.
	PictureFileName string
	PictureData     []byte
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(tokenString string) (string, error)
	GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	media    MediaService
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, media MediaService, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		media:    media,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil && existingUser != nil {
		return nil, "", apperrors.Validation("user with email %s already exists", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	picturePath := ""
	if len(req.PictureData) > 0 {
		if err := s.media.ValidateImageName(req.PictureFileName); err != nil {
			return nil, "", err
		}
		picturePath = s.media.NewAssetPath(req.PictureFileName)
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		PicturePath:  picturePath,
		Friends:      []primitive.ObjectID{},
		Location:     req.Location,
		Occupation:   req.Occupation,
		Twitter:      req.Twitter,
		LinkedIn:     req.LinkedIn,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	if picturePath != "" {
		userID := user.ID
		s.media.UploadDetached(userID.Hex(), req.PictureFileName, req.PictureData,
			func(ctx context.Context, objectName, mediaURL string) {
				if err := s.userRepo.UpdatePicturePath(ctx, userID, mediaURL); err != nil {
					log.Warn().Err(err).Str("user", userID.Hex()).Msg("failed to reconcile profile picture")
				}
			})
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", apperrors.Auth("user does not exist")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.Auth("invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":  user.ID.Hex(),
		"exp": time.Now().Add(s.cfg.TokenDuration).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken checks the signature and expiry and returns the user id claim.
func (s *authService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil {
		return "", apperrors.Auth("invalid or expired token: %v", err)
	}

	if !token.Valid {
		return "", apperrors.Auth("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.Auth("invalid token claims")
	}

	userID, ok := claims["id"].(string)
	if !ok || userID == "" {
		return "", apperrors.Auth("token is missing the user id claim")
	}

	return userID, nil
}

func (s *authService) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Auth("malformed user id in token")
	}

	return s.userRepo.GetByID(ctx, id)
}
