package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Progress storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMongo  = "mongo"
)

// Quiz session storage backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	Addr             string
	LogLevel         string
	QuestionBankPath string
	StaticDir        string
	ImagePrefix      string
	ProgressBackend  string
	DBPath           string
	ProgressDir      string
	MongoURI         string
	MongoDatabase    string
	SessionBackend   string
	RedisAddr        string
	RedisPrefix      string
	CookieSecure     bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		QuestionBankPath: envOr("QUESTION_BANK_PATH", "data/enhanced_quizzes.json"),
		StaticDir:        envOr("STATIC_DIR", "web/static"),
		ImagePrefix:      envOr("IMAGE_PREFIX", "/static/images"),
		ProgressBackend:  strings.ToLower(envOr("PROGRESS_BACKEND", BackendSQLite)),
		DBPath:           envOr("DB_PATH", "file:anatomy.db"),
		ProgressDir:      envOr("PROGRESS_DIR", "data/user_progress"),
		MongoURI:         envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    envOr("MONGO_DATABASE", "anatomy"),
		SessionBackend:   strings.ToLower(envOr("SESSION_BACKEND", SessionMemory)),
		RedisAddr:        envOr("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:      envOr("REDIS_PREFIX", "anatomy:quiz:"),
		CookieSecure:     envBoolOr("USER_COOKIE_SECURE", false),
	}
}

// Validate checks that the configuration is usable for the selected backends.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.QuestionBankPath == "" {
		return fmt.Errorf("QUESTION_BANK_PATH cannot be empty")
	}
	if c.ImagePrefix == "" || !strings.HasPrefix(c.ImagePrefix, "/") {
		return fmt.Errorf("IMAGE_PREFIX must be an absolute URL path, got %q", c.ImagePrefix)
	}

	switch c.ProgressBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty when PROGRESS_BACKEND=%s", BackendSQLite)
		}
	case BackendJSON:
		if c.ProgressDir == "" {
			return fmt.Errorf("PROGRESS_DIR cannot be empty when PROGRESS_BACKEND=%s", BackendJSON)
		}
	case BackendMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required when PROGRESS_BACKEND=%s", BackendMongo)
		}
	default:
		return fmt.Errorf("PROGRESS_BACKEND must be one of %s, %s, %s; got %q", BackendSQLite, BackendJSON, BackendMongo, c.ProgressBackend)
	}

	switch c.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty when SESSION_BACKEND=%s", SessionRedis)
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be %s or %s; got %q", SessionMemory, SessionRedis, c.SessionBackend)
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR; got %q", c.LogLevel)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
