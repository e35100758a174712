package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Mongo struct {
	URI    string
	DbNAME string
}

type Redis struct {
	Addr     string
	Password string
	DbINDEX  int
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

type Stories struct {
	Lifetime   time.Duration
	CacheTTL   time.Duration
	SweepEvery time.Duration
}

type Config struct {
	ServerPort    int
	Mongo         Mongo
	Redis         Redis
	MinIO         MinIO
	Stories       Stories
	PostsCacheTTL time.Duration
	JWTSecretKey  string
	TokenDuration time.Duration
	MaxUploadSize int64
	AssetsDir     string
	AssetsBaseURL string
	SongAPIURL    string
	SongAPIKey    string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func LoadMongo() Mongo {
	return Mongo{
		URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DbNAME: getEnv("MONGO_DB_NAME", "sociogram"),
	}
}

func LoadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DbINDEX:  getEnvAsInt("REDIS_DB", 0),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "media"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  getEnv("MINIO_PUBLIC_URL", "http://localhost:9000/media"),
	}
}

// LoadStories exposes the staleness bounds of the story pipeline as tunables:
// story lifetime, listing cache TTL and the expiry announcer sweep interval.
func LoadStories() Stories {
	return Stories{
		Lifetime:   getEnvAsDuration("STORY_LIFETIME", 24*time.Hour),
		CacheTTL:   getEnvAsDuration("STORIES_CACHE_TTL", 60*time.Second),
		SweepEvery: getEnvAsDuration("STORY_SWEEP_INTERVAL", time.Minute),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:    getEnvAsInt("SERVER_PORT", 6001),
		Mongo:         LoadMongo(),
		Redis:         LoadRedis(),
		MinIO:         LoadMinIO(),
		Stories:       LoadStories(),
		PostsCacheTTL: getEnvAsDuration("POSTS_CACHE_TTL", 60*time.Second),
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", ""),
		TokenDuration: getEnvAsDuration("TOKEN_DURATION", 2*time.Hour),
		MaxUploadSize: parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		AssetsDir:     getEnv("ASSETS_DIR", "public/assets"),
		AssetsBaseURL: getEnv("ASSETS_BASE_URL", "/assets"),
		SongAPIURL:    getEnv("SONG_API_URL", "https://www.googleapis.com/youtube/v3/search"),
		SongAPIKey:    getEnv("SONG_API_KEY", ""),
	}
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}
