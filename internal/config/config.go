package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sadopc/workway/internal/store"
)

// Config holds application runtime configuration.
type Config struct {
	DBPath   string
	LogLevel string
	LogFile  string
	// Locale overrides the stored locale setting when non-empty.
	Locale string
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	dbPath := getEnv("WORKWAY_DB_PATH", "")
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		dbPath = p
	}

	cfg := Config{
		DBPath:   dbPath,
		LogLevel: strings.ToLower(getEnv("WORKWAY_LOG_LEVEL", "info")),
		LogFile:  getEnv("WORKWAY_LOG_FILE", filepath.Join(filepath.Dir(dbPath), "workway.log")),
		Locale:   strings.TrimSpace(getEnv("WORKWAY_LOCALE", "")),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}
