package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	Port       string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string

	// Connection pool bounds. Callers block (database/sql wait semantics)
	// when MaxOpenConns is exhausted.
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Deadline applied to every clinical data store call.
	QueryTimeout time.Duration

	// Path of the custom metric registry file.
	MetricsFile string
}

var (
	cfg  *Config
	once sync.Once
)

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg = &Config{
			AppEnv:            os.Getenv("APP_ENV"),
			Port:              envOr("PORT", "8080"),
			DBUser:            os.Getenv("DB_USER"),
			DBPassword:        os.Getenv("DB_PASSWORD"),
			DBHost:            os.Getenv("DB_HOST"),
			DBPort:            envOr("DB_PORT", "3306"),
			DBName:            os.Getenv("DB_NAME"),
			JWTSecret:         os.Getenv("JWT_SECRET_KEY"),
			DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
			DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 2),
			DBConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			QueryTimeout:      envDuration("QUERY_TIMEOUT", 30*time.Second),
			MetricsFile:       envOr("METRICS_FILE", "custom_metrics/saved_metrics.json"),
		}
	})
	return cfg
}
