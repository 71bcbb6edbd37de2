package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Cache     CacheConfig
	Embedding EmbeddingConfig
	Worker    WorkerConfig
	JWTSecret string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// CacheConfig holds the embedding-cache configuration.
// Backend is "memory" or "redis".
type CacheConfig struct {
	Backend   string
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// EmbeddingConfig holds the embedding-service client configuration.
// An empty URL means the capability is unavailable and classification is
// skipped (complaints proceed uncategorized).
type EmbeddingConfig struct {
	ServiceURL string
	Timeout    time.Duration
}

// WorkerConfig holds background worker cadences.
type WorkerConfig struct {
	SweepInterval    time.Duration
	ReminderInterval time.Duration
	ReminderWindow   time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "cmfs"),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("PORT", getEnv("SERVER_PORT", "8080")),
		},
		Cache: CacheConfig{
			Backend:   getEnv("CACHE_BACKEND", "memory"),
			RedisAddr: getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			RedisDB:   getEnvInt("REDIS_DB", 0),
			TTL:       getEnvDuration("EMBEDDING_CACHE_TTL", 30*time.Minute),
		},
		Embedding: EmbeddingConfig{
			ServiceURL: os.Getenv("EMBEDDING_SERVICE_URL"),
			Timeout:    getEnvDuration("EMBEDDING_TIMEOUT", 10*time.Second),
		},
		Worker: WorkerConfig{
			SweepInterval:    getEnvDuration("SWEEP_INTERVAL", 30*time.Minute),
			ReminderInterval: getEnvDuration("REMINDER_INTERVAL", 6*time.Hour),
			ReminderWindow:   getEnvDuration("REMINDER_WINDOW", 24*time.Hour),
		},
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable (Go duration syntax,
// e.g. "30m", "48h") or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
