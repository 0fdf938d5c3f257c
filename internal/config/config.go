// Package config loads service configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings for the cadastral export service.
type Config struct {
	Port           int
	DBPath         string
	FrontendOrigin string

	CacheTTL       time.Duration
	MaxIDsPerChunk int
	ArcGISTimeout  time.Duration

	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
}

// Load reads configuration from environment variables, with an
// optional .env file in the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded (using environment variables): %v", err)
	}

	return &Config{
		Port:           getIntEnv("PORT", 8080),
		DBPath:         getEnv("DB_PATH", "data/cadastral-export.db"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),

		CacheTTL:       time.Duration(getIntEnv("CACHE_TTL", 900)) * time.Second,
		MaxIDsPerChunk: getIntEnv("MAX_IDS_PER_CHUNK", 50),
		ArcGISTimeout:  time.Duration(getIntEnv("ARCGIS_TIMEOUT_S", 20)) * time.Second,

		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitWindow:      time.Duration(getIntEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
