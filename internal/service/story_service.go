package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sociogram/internal/apperrors"
	"sociogram/internal/cache"
	"sociogram/internal/config"
	"sociogram/internal/models"
	"sociogram/internal/realtime"
	"sociogram/internal/repository"
	"sociogram/internal/songs"
)

type SubmitStoryRequest struct {
	UserID   string
	FileName string
	FileData []byte
	// Optional song hint; lookup failure never fails the submission.
	SongName   string
	SongArtist string
}

type StoryService interface {
	Submit(ctx context.Context, req SubmitStoryRequest) (*models.Story, error)
	ListVisible(ctx context.Context) ([]models.Story, error)
}

type storyService struct {
	storyRepo   repository.StoryRepository
	userRepo    repository.UserRepository
	media       MediaService
	cache       cache.Cache
	songs       songs.Resolver
	broadcaster realtime.Broadcaster
	cfg         *config.Config
	now         func() time.Time
}

func NewStoryService(storyRepo repository.StoryRepository, userRepo repository.UserRepository,
	media MediaService, cacheLayer cache.Cache, songResolver songs.Resolver,
	broadcaster realtime.Broadcaster, cfg *config.Config) StoryService {

	return &storyService{
		storyRepo:   storyRepo,
		userRepo:    userRepo,
		media:       media,
		cache:       cacheLayer,
		songs:       songResolver,
		broadcaster: broadcaster,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Submit uploads the media, persists the story with an explicit expiry
// instant and announces it to connected clients. The user and the file are
// hard preconditions; the song hint is best-effort decoration.
func (s *storyService) Submit(ctx context.Context, req SubmitStoryRequest) (*models.Story, error) {
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return nil, apperrors.Validation("invalid user id %q", req.UserID)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Validation("user %s does not exist", req.UserID)
		}
		return nil, err
	}

	if len(req.FileData) == 0 {
		return nil, apperrors.Validation("a media file is required")
	}
	if err := s.media.ValidateImageName(req.FileName); err != nil {
		return nil, err
	}

	_, mediaURL, err := s.media.Upload(ctx, req.UserID, req.FileName,
		bytes.NewReader(req.FileData), int64(len(req.FileData)))
	if err != nil {
		return nil, err
	}

	var song *models.Song
	if req.SongName != "" {
		song = &models.Song{Name: req.SongName, Artist: req.SongArtist}
		videoID, err := s.songs.ResolveVideoID(ctx, req.SongName, req.SongArtist)
		if err != nil {
			log.Warn().Err(err).Str("song", req.SongName).Msg("song video lookup failed")
		} else {
			song.VideoID = videoID
		}
	}

	now := s.now()
	story := &models.Story{
		UserID:    user.ID,
		MediaURL:  mediaURL,
		Song:      song,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.Stories.Lifetime),
		Archived:  false,
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyStories)

	story.Author = s.authorBrief(ctx, user)
	s.broadcaster.Broadcast(realtime.EventNewStory, story)

	return story, nil
}

// ListVisible is the read-through listing: a cache hit is returned verbatim,
// media resolution included. On a miss the visibility filter
// (archived == false && expiresAt > now) runs against the document store and
// the resolved result is written back before returning.
func (s *storyService) ListVisible(ctx context.Context) ([]models.Story, error) {
	if cached, ok := s.cache.Get(ctx, cache.KeyStories); ok {
		var stories []models.Story
		if err := json.Unmarshal([]byte(cached), &stories); err == nil {
			return stories, nil
		}
		log.Warn().Msg("discarding undecodable stories cache entry")
	}

	stories, err := s.storyRepo.ListVisible(ctx, s.now())
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(stories))
	seen := map[primitive.ObjectID]bool{}
	for _, st := range stories {
		if !seen[st.UserID] {
			seen[st.UserID] = true
			ids = append(ids, st.UserID)
		}
	}

	briefs, err := s.userRepo.GetBriefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.UserBrief, len(briefs))
	for _, b := range briefs {
		b.Occupation = ""
		b.Location = ""
		b.PicturePath = s.media.ResolveURL(ctx, b.PicturePath)
		byID[b.ID] = b
	}

	for i := range stories {
		stories[i].MediaURL = s.media.ResolveURL(ctx, stories[i].MediaURL)
		if brief, ok := byID[stories[i].UserID]; ok {
			b := brief
			stories[i].Author = &b
		}
	}

	if encoded, err := json.Marshal(stories); err == nil {
		s.cache.Set(ctx, cache.KeyStories, string(encoded), s.cfg.Stories.CacheTTL)
	}

	return stories, nil
}

// authorBrief builds the restricted projection broadcast with a new story:
// first name, last name and picture only.
func (s *storyService) authorBrief(ctx context.Context, user *models.User) *models.UserBrief {
	return &models.UserBrief{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PicturePath: s.media.ResolveURL(ctx, user.PicturePath),
	}
}
