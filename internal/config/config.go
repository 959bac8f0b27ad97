package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type PlayerConfig struct {
	ServerURL    string
	Token        string
	HTTPTimeout  time.Duration
	TickInterval time.Duration
	// JournalPath is empty when history is disabled.
	JournalPath string
	Redis       RedisConfig
	LogLevel    slog.Level
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// MarkTTL bounds how long a started quiz stays playable.
	MarkTTL time.Duration
}

type DevServerConfig struct {
	Addr        string
	CatalogPath string
	JWTSecret   string
	SeedOpenTDB int
	OpenTDB     OpenTDBConfig
	LogLevel    slog.Level
}

type OpenTDBConfig struct {
	URL        string
	Category   int
	Difficulty string
}

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadPlayer() *PlayerConfig {
	return &PlayerConfig{
		ServerURL:    getEnv("QUIZ_SERVER_URL", "http://127.0.0.1:8080/api"),
		Token:        getEnv("QUIZ_TOKEN", ""),
		HTTPTimeout:  getEnvAsDuration("QUIZ_HTTP_TIMEOUT", 5*time.Second),
		TickInterval: getEnvAsDuration("QUIZ_TICK_INTERVAL", time.Second),
		JournalPath:  getEnvAllowEmpty("QUIZ_JOURNAL_PATH", "quiz-player.db"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			MarkTTL:  getEnvAsDuration("START_MARK_TTL", 2*time.Hour),
		},
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func LoadDevServer() *DevServerConfig {
	return &DevServerConfig{
		Addr:        getEnv("DEV_ADDR", ":8080"),
		CatalogPath: getEnv("DEV_CATALOG_PATH", ""),
		JWTSecret:   getEnv("DEV_JWT_SECRET", "dev-secret"),
		SeedOpenTDB: getEnvAsInt("DEV_SEED_OPENTDB", 0),
		OpenTDB: OpenTDBConfig{
			URL:        getEnv("DEV_OPENTDB_URL", "https://opentdb.com/api.php"),
			Category:   getEnvAsInt("DEV_OPENTDB_CATEGORY", 0),
			Difficulty: getEnv("DEV_OPENTDB_DIFFICULTY", ""),
		},
		LogLevel:    getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty treats a variable set to "" as an explicit empty value.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv(key, ""))); err != nil {
		return defaultValue
	}
	return level
}
