package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RoomDuration time.Duration
	TickInterval time.Duration

	LeaderboardDriver string
	DatabaseURL       string
	SQLitePath        string
}

// Load reads configuration from the environment. Values in a local .env file
// are applied first without overriding variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnvInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		RoomDuration: getEnvDuration("ROOM_DURATION", 600*time.Second),
		TickInterval: getEnvDuration("TICK_INTERVAL", 100*time.Millisecond),

		LeaderboardDriver: getEnv("LEADERBOARD_DRIVER", "memory"),
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost:5432/missionroom?sslmode=disable"),
		SQLitePath:        getEnv("SQLITE_PATH", "leaderboard.db"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
