package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL       string
	Port        string
	LogLevel    string
	LogFormat   string
	DataFile    string
	LabelColumn string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is read first; variables already set
// in the shell take precedence over it.
func Load() (*Config, error) {
	cfg := LoadOffline()
	if cfg.PGURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}
	return cfg, nil
}

// LoadOffline reads the same configuration as Load but does not require PG_URL.
// It serves commands that never open a database connection.
func LoadOffline() *Config {
	_ = godotenv.Load()

	return &Config{
		PGURL:       os.Getenv("PG_URL"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		DataFile:    getEnv("DATA_FILE", "data/data.csv"),
		LabelColumn: getEnv("LABEL_COLUMN", "Bankrupt?"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
