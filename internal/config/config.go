// Package config centralises runtime configuration for the tracker service.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by OpenStore.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures every tunable of the service.
type Config struct {
	Port            string
	GinMode         string
	StoreDriver     string
	SQLitePath      string
	DatabaseURL     string
	DB              DBConfig
	BodyLimitBytes  int64
	RateLimit       string // ulule/limiter format, e.g. "120-M"; empty disables
	JWTSecret       string // empty disables the write guard
	LogFile         string
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DBConfig holds the discrete postgres connection settings used when
// DATABASE_URL is not set.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	return Config{
		Port:        getEnv("PORT", "5000"),
		GinMode:     getEnv("GIN_MODE", "release"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/activities.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "tracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		BodyLimitBytes:  int64(getIntEnv("BODY_LIMIT_BYTES", 50<<20)),
		RateLimit:       getEnv("RATE_LIMIT", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		LogFile:         getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// Addr is the listen address; the server binds every interface like the
// mobile client expects.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return defaultValue
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
