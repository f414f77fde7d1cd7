package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/bahar-app/bahar/internal/models"
)

type Config struct {
	Addr                 string
	DataDir              string
	RemoteBaseURL        string
	UserID               string
	AccessToken          string
	LogLevel             string
	SyncIntervalSeconds  int
	BacklogThresholdDays int
	ReviewDisplayLimit   int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8585"),
		DataDir:              envOr("DATA_DIR", "data"),
		RemoteBaseURL:        envOr("REMOTE_BASE_URL", "https://api.bahar.app"),
		UserID:               envOr("USER_ID", ""),
		AccessToken:          envOr("ACCESS_TOKEN", ""),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		SyncIntervalSeconds:  envIntOr("SYNC_INTERVAL_SECONDS", 300),
		BacklogThresholdDays: envIntOr("BACKLOG_THRESHOLD_DAYS", models.DefaultBacklogThresholdDays),
		ReviewDisplayLimit:   envIntOr("REVIEW_DISPLAY_LIMIT", models.DefaultDisplayLimit),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
