package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Mode         string // "debug" or "release"
	JWTSecret    string
	TokenExpiry  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	ConnTimeout time.Duration
}

type RedisConfig struct {
	// Enabled gates the cache store entirely. When false the API runs
	// uncached and every cache operation degrades to a no-op.
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type CacheConfig struct {
	// TTLs for the response-cache middleware on the blog read routes.
	ListTTL   time.Duration
	DetailTTL time.Duration
	// Warming behavior for the API process.
	WarmOnStart  bool
	WarmInterval time.Duration
}

// Load builds the configuration from environment variables. Missing values
// fall back to development defaults; Load itself never fails.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Mode:         getEnv("GIN_MODE", "release"),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenExpiry:  getDurationEnv("TOKEN_EXPIRY", 7*24*time.Hour),
			ReadTimeout:  getDurationEnv("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "blogapi"),
			Password:    getEnv("DB_PASSWORD", "secret"),
			Name:        getEnv("DB_NAME", "blogapi_db"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			ConnTimeout: getDurationEnv("DB_CONN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  os.Getenv("REDIS_HOST") != "",
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			ListTTL:      getDurationEnv("CACHE_LIST_TTL", 5*time.Minute),
			DetailTTL:    getDurationEnv("CACHE_DETAIL_TTL", 10*time.Minute),
			WarmOnStart:  getBoolEnv("CACHE_WARM_ON_START", true),
			WarmInterval: getDurationEnv("CACHE_WARM_INTERVAL", 60*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
