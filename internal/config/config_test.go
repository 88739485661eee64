package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/anatomyflash/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:             ":8080",
		LogLevel:         "INFO",
		QuestionBankPath: "data/enhanced_quizzes.json",
		StaticDir:        "web/static",
		ImagePrefix:      "/static/images",
		ProgressBackend:  config.BackendSQLite,
		DBPath:           "file:test.db",
		ProgressDir:      "data/user_progress",
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "anatomy",
		SessionBackend:   config.SessionMemory,
		RedisAddr:        "localhost:6379",
		RedisPrefix:      "anatomy:quiz:",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "empty addr",
			mutate:  func(c *config.Config) { c.Addr = "" },
			wantErr: "ADDR cannot be empty",
		},
		{
			name:    "empty question bank",
			mutate:  func(c *config.Config) { c.QuestionBankPath = "" },
			wantErr: "QUESTION_BANK_PATH",
		},
		{
			name:    "relative image prefix",
			mutate:  func(c *config.Config) { c.ImagePrefix = "static/images" },
			wantErr: "IMAGE_PREFIX",
		},
		{
			name:    "unknown progress backend",
			mutate:  func(c *config.Config) { c.ProgressBackend = "postgres" },
			wantErr: "PROGRESS_BACKEND",
		},
		{
			name:    "sqlite without db path",
			mutate:  func(c *config.Config) { c.DBPath = "" },
			wantErr: "DB_PATH",
		},
		{
			name: "json without directory",
			mutate: func(c *config.Config) {
				c.ProgressBackend = config.BackendJSON
				c.ProgressDir = ""
			},
			wantErr: "PROGRESS_DIR",
		},
		{
			name: "mongo without database",
			mutate: func(c *config.Config) {
				c.ProgressBackend = config.BackendMongo
				c.MongoDatabase = ""
			},
			wantErr: "MONGO_DATABASE",
		},
		{
			name:    "unknown session backend",
			mutate:  func(c *config.Config) { c.SessionBackend = "memcached" },
			wantErr: "SESSION_BACKEND",
		},
		{
			name: "redis without address",
			mutate: func(c *config.Config) {
				c.SessionBackend = config.SessionRedis
				c.RedisAddr = ""
			},
			wantErr: "REDIS_ADDR",
		},
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.LogLevel = "TRACE" },
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ADDR", "LOG_LEVEL", "QUESTION_BANK_PATH", "PROGRESS_BACKEND", "DB_PATH",
		"SESSION_BACKEND", "USER_COOKIE_SECURE", "IMAGE_PREFIX",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "data/enhanced_quizzes.json", cfg.QuestionBankPath)
	assert.Equal(t, config.BackendSQLite, cfg.ProgressBackend)
	assert.Equal(t, config.SessionMemory, cfg.SessionBackend)
	assert.Equal(t, "/static/images", cfg.ImagePrefix)
	assert.False(t, cfg.CookieSecure)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("PROGRESS_BACKEND", "JSON")
	t.Setenv("PROGRESS_DIR", "/tmp/progress")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("USER_COOKIE_SECURE", "true")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, config.BackendJSON, cfg.ProgressBackend)
	assert.Equal(t, "/tmp/progress", cfg.ProgressDir)
	assert.Equal(t, config.SessionRedis, cfg.SessionBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_InvalidBoolFallsBack(t *testing.T) {
	t.Setenv("USER_COOKIE_SECURE", "sometimes")

	cfg := config.Load()
	assert.False(t, cfg.CookieSecure)
}
