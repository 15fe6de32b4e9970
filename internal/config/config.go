package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	ServerPort     string
	StaticPath     string
	MigrationsPath string

	// Database: sqlite by default, postgres/mysql via DATABASE_URL.
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// Corpus service (Gutendex-compatible).
	CorpusBaseURL string

	// Generative-text provider. An empty API key runs the game on the
	// deterministic fallback paths only.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Quality scorer thresholds, optional YAML override.
	QualityConfigPath string

	// Secret for signing game outcome tokens.
	LeaderboardSecret string

	// Idle game sessions are dropped after this long.
	SessionTTL time.Duration

	// Batch candidate-selection timeout per round.
	SelectionTimeout time.Duration
}

// Load reads configuration from the environment with sensible defaults. A
// .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:        getEnv("PORT", "8080"),
		StaticPath:        getEnv("STATIC_PATH", "./static"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		DatabaseType:      getEnv("DB_TYPE", "sqlite"),
		DatabasePath:      getEnv("DB_PATH", "./clozereader.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		CorpusBaseURL:     getEnv("CORPUS_BASE_URL", "https://gutendex.com"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:        getDuration("LLM_TIMEOUT_SECONDS", 30*time.Second),
		QualityConfigPath: getEnv("QUALITY_CONFIG_PATH", ""),
		LeaderboardSecret: getEnv("LEADERBOARD_SECRET", "dev-only-secret"),
		SessionTTL:        getDuration("SESSION_TTL_SECONDS", 2*time.Hour),
		SelectionTimeout:  getDuration("SELECTION_TIMEOUT_SECONDS", 20*time.Second),
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a whole-second duration from the environment.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		log.Printf("Ignoring invalid %s value %q", key, value)
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
