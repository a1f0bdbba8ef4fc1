package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the server
type Config struct {
	ServerAddr     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBackend  string // "rest" or "sdk"
	GeminiEndpoint string
	JWTSecret      string
	TokenTTL       time.Duration
	LogLevel       string
}

// Load reads envFile (if present) and the process environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("no .env file loaded, using process environment", "err", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "12h"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        redisDB,
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		GeminiBackend:  getEnv("GEMINI_BACKEND", "rest"),
		GeminiEndpoint: getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1/models"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		TokenTTL:       ttl,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
