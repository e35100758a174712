package app

import (
	"github.com/rs/zerolog/log"

	"sociogram/internal/cache"
	"sociogram/internal/config"
	"sociogram/internal/database"
	"sociogram/internal/realtime"
	"sociogram/internal/repository"
	"sociogram/internal/service"
	"sociogram/internal/songs"
	"sociogram/internal/storage"
)

type App struct {
	DB       *database.DB
	Cache    *cache.RedisCache
	Repo     *repository.Repository
	Services *service.Service
	Hub      *realtime.Hub
	Expiry   *service.ExpiryAnnouncer
}

func New(cfg *config.Config) *App {
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize MinIO")
	}

	hub := realtime.NewHub()
	songResolver := songs.NewHTTPResolver(cfg)

	repo := repository.NewRepository(db)
	services := service.NewService(repo, cfg, redisCache, minioClient, songResolver, hub)
	expiry := service.NewExpiryAnnouncer(repo.Story, redisCache, hub, cfg)

	return &App{
		DB:       db,
		Cache:    redisCache,
		Repo:     repo,
		Services: services,
		Hub:      hub,
		Expiry:   expiry,
	}
}
