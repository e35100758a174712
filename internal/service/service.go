package service

import (
	"sociogram/internal/cache"
	"sociogram/internal/config"
	"sociogram/internal/realtime"
	"sociogram/internal/repository"
	"sociogram/internal/songs"
	"sociogram/internal/storage"
)

type Service struct {
	Auth  AuthService
	User  UserService
	Post  PostService
	Story StoryService
	Media MediaService
}

func NewService(rep *repository.Repository, cfg *config.Config, cacheLayer cache.Cache,
	store storage.Storage, songResolver songs.Resolver, broadcaster realtime.Broadcaster) *Service {

	media := NewMediaService(store, cacheLayer, cfg)

	return &Service{
		Auth:  NewAuthService(rep.User, media, cfg),
		User:  NewUserService(rep.User, media),
		Post:  NewPostService(rep.Post, rep.User, media, cacheLayer, broadcaster, cfg),
		Story: NewStoryService(rep.Story, rep.User, media, cacheLayer, songResolver, broadcaster, cfg),
		Media: media,
	}
}
