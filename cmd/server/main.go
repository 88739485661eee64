package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vytor/anatomyflash/internal/api"
	"github.com/vytor/anatomyflash/internal/assets"
	"github.com/vytor/anatomyflash/internal/config"
	"github.com/vytor/anatomyflash/internal/db"
	"github.com/vytor/anatomyflash/internal/logger"
	"github.com/vytor/anatomyflash/internal/quiz"
	"github.com/vytor/anatomyflash/internal/repository"
	"github.com/vytor/anatomyflash/internal/repository/jsonfile"
	"github.com/vytor/anatomyflash/internal/repository/mongodb"
	"github.com/vytor/anatomyflash/internal/repository/sqlite"
	"github.com/vytor/anatomyflash/internal/services"
	"github.com/vytor/anatomyflash/internal/sessions"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("AnatomyFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("question_bank_path=%s", cfg.QuestionBankPath)
	log.Debug("static_dir=%s", cfg.StaticDir)
	log.Debug("image_prefix=%s", cfg.ImagePrefix)
	log.Debug("progress_backend=%s", cfg.ProgressBackend)
	log.Debug("session_backend=%s", cfg.SessionBackend)
	log.Debug("log_level=%s", cfg.LogLevel)

	bank, problems, err := quiz.LoadBankFile(cfg.QuestionBankPath)
	if err != nil {
		log.Error("failed to load question bank: %v", err)
		os.Exit(1)
	}
	for _, p := range problems {
		log.Warn("skipping question: %v", p)
	}
	log.Info("question bank loaded: %d questions, %d skipped", bank.Size(), len(problems))

	progressRepo, closeProgress, err := openProgressRepository(cfg, log)
	if err != nil {
		log.Error("failed to open progress store: %v", err)
		os.Exit(1)
	}
	defer closeProgress()

	sessionStore, sessionPinger, closeSessions, err := openSessionStore(cfg, log)
	if err != nil {
		log.Error("failed to open session store: %v", err)
		closeProgress()
		os.Exit(1)
	}
	defer closeSessions()

	progressService := services.NewProgressService(progressRepo)
	quizService := services.NewQuizService(bank, sessionStore, progressService, nil)

	srv := &api.Server{
		QuizService:     quizService,
		ProgressService: progressService,
		Assets:          assets.NewStaticResolver(cfg.ImagePrefix),
		Sessions:        sessionPinger,
		StaticDir:       cfg.StaticDir,
		CookieSecure:    cfg.CookieSecure,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("AnatomyFlash Server Stopped")
	log.Info("===========================================")
}

// openProgressRepository connects the configured progress backend. The
// returned close function is always safe to call.
func openProgressRepository(cfg config.Config, log *logger.Logger) (repository.ProgressRepository, func(), error) {
	switch cfg.ProgressBackend {
	case config.BackendJSON:
		log.Info("storing progress as JSON files in %s", cfg.ProgressDir)
		repo, err := jsonfile.NewProgressRepository(cfg.ProgressDir)
		return repo, func() {}, err

	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		log.Info("connecting to MongoDB database %s", cfg.MongoDatabase)
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() {
			log.Debug("disconnecting from MongoDB")
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Warn("mongo disconnect: %v", err)
			}
		}
		repo := mongodb.NewProgressRepository(client, cfg.MongoDatabase)
		if err := repo.Ping(ctx); err != nil {
			closeFn()
			return nil, func() {}, fmt.Errorf("ping mongo: %w", err)
		}
		return repo, closeFn, nil

	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, func() {}, err
		}
		closeFn := func() {
			log.Debug("closing database connection")
			database.Close()
		}
		return sqlite.NewProgressRepository(database.DB), closeFn, nil
	}
}

// openSessionStore returns the quiz session store and, for networked
// backends, a pinger for the readiness probe.
func openSessionStore(cfg config.Config, log *logger.Logger) (sessions.Store, api.Pinger, func(), error) {
	if cfg.SessionBackend != config.SessionRedis {
		log.Info("keeping quiz sessions in memory")
		return sessions.NewMemoryStore(), nil, func() {}, nil
	}

	log.Info("keeping quiz sessions in Redis at %s", cfg.RedisAddr)
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store := sessions.NewRedisStore(client, cfg.RedisPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, func() {}, fmt.Errorf("ping redis: %w", err)
	}

	closeFn := func() {
		log.Debug("closing Redis client")
		if err := client.Close(); err != nil {
			log.Warn("redis close: %v", err)
		}
	}
	return store, store, closeFn, nil
}
