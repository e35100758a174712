package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sociogram/cmd/app"
	"sociogram/internal/config"
	"sociogram/internal/handler"
	"sociogram/internal/middleware"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal().Msg("JWT_SECRET_KEY is not set")
	}

	application := app.New(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.DB.CloseDB(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to close MongoDB connection")
		}
		if err := application.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close Redis connection")
		}
	}()

	handlers := handler.NewHandlers(application.Services, cfg)

	router := mux.NewRouter()

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Server is running"))
	}).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := application.DB.HealthCheck(ctx); err != nil {
			handler.WriteError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		handler.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	}).Methods(http.MethodGet)

	router.HandleFunc("/auth/register", handlers.Register).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", handlers.Login).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", handlers.Logout).Methods(http.MethodPost)
	router.HandleFunc("/verify/verify-token", handlers.VerifyToken).Methods(http.MethodGet)

	router.HandleFunc("/users/{id}", handlers.GetUser).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/friends", handlers.GetUserFriends).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}", handlers.UpdateUser).Methods(http.MethodPatch)
	router.HandleFunc("/users/{id}/{friendId}", handlers.ToggleFriend).Methods(http.MethodPatch)

	router.HandleFunc("/posts", handlers.GetFeedPosts).Methods(http.MethodGet)
	router.HandleFunc("/posts", handlers.CreatePost).Methods(http.MethodPost)
	router.HandleFunc("/posts/{userId}/posts", handlers.GetUserPosts).Methods(http.MethodGet)
	router.HandleFunc("/posts/{id}/like", handlers.LikePost).Methods(http.MethodPatch)
	router.HandleFunc("/posts/{id}/comment", handlers.AddComment).Methods(http.MethodPost)
	router.HandleFunc("/posts/{id}/comments", handlers.GetComments).Methods(http.MethodGet)
	router.HandleFunc("/posts/{id}", handlers.DeletePost).Methods(http.MethodDelete)

	router.HandleFunc("/stories", handlers.GetStories).Methods(http.MethodGet)
	router.HandleFunc("/stories", handlers.CreateStory).Methods(http.MethodPost)

	router.HandleFunc("/ws", application.Hub.HandleWS)

	// Uploaded media is served from the local assets dir when a document
	// still carries its pre-reconciliation path.
	router.PathPrefix("/assets/").Handler(
		http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.AssetsDir))))

	handlerChain := middleware.Chain(
		router,
		middleware.AuthMiddleware(application.Services.Auth),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware,
	)

	if err := application.Expiry.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start story expiry announcer")
	}
	defer func() {
		if err := application.Expiry.Stop(); err != nil {
			log.Warn().Err(err).Msg("failed to stop story expiry announcer")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := http.ListenAndServe(addr, handlerChain); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
