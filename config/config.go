package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all process configuration, read from the environment.
type Config struct {
	DatabaseURL string
	Port        int
	JWTSecret   string
	RedisURL    string
	CronSecret  string

	// Object storage for uploaded documents, photos, and payment proofs.
	StorageEndpoint string
	StorageBucket   string
	StorageAPIKey   string
}

// Load reads configuration from the environment. A .env file is applied
// first when present so local development matches deployed behavior.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CronSecret:      os.Getenv("CRON_SECRET"),
		StorageEndpoint: os.Getenv("STORAGE_ENDPOINT"),
		StorageBucket:   os.Getenv("STORAGE_BUCKET"),
		StorageAPIKey:   os.Getenv("STORAGE_API_KEY"),
		Port:            8080,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("config: invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	return cfg, nil
}
