package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chunkrecall/trainer/internal/api"
	"github.com/chunkrecall/trainer/internal/auth"
	"github.com/chunkrecall/trainer/internal/config"
	"github.com/chunkrecall/trainer/internal/cron"
	"github.com/chunkrecall/trainer/internal/db"
	"github.com/chunkrecall/trainer/internal/jobs"
	"github.com/chunkrecall/trainer/internal/llm"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/repository/sqlite"
	"github.com/chunkrecall/trainer/internal/services"
	"github.com/chunkrecall/trainer/internal/worker"
	"github.com/chunkrecall/trainer/web"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Chunk Recall Trainer Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("openai_model=%s", cfg.OpenAIModel)
	log.Debug("daily_limit=%d", cfg.DailyLimit)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("queue_refresh_at=%s", cfg.QueueRefreshAt)
	log.Debug("allowed_emails=%d", len(cfg.AllowedEmails))

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		_ = database.Close()
	}()

	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates(web.FS)
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}

	// Initialize repositories
	chunkRepo := sqlite.NewChunkRepository(database.DB)
	queueRepo := sqlite.NewQueueRepository(database.DB)
	userRepo := sqlite.NewUserRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	importRepo := sqlite.NewImportRepository(database.DB)
	exerciseRepo := sqlite.NewExerciseRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)
	jobQueue := jobs.NewWorkerQueue(importPool, chunkRepo, importRepo)

	llmClient := llm.NewClient(llm.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		Model:           cfg.OpenAIModel,
		TranscribeModel: cfg.OpenAITranscribeModel,
		Temperature:     cfg.OpenAITemperature,
	})
	firebase := auth.NewFirebase(auth.FirebaseConfig{APIKey: cfg.FirebaseAPIKey})

	// Initialize services
	clock := services.SystemClock
	reviewService := services.NewReviewService(chunkRepo, queueRepo, userRepo, cfg.DailyLimit, clock)
	authService := services.NewAuthService(firebase, auth.NewAllowList(cfg.AllowedEmails), userRepo, sessionRepo, cfg.SessionTTL, clock)

	srv := &api.Server{
		ChunkService:    services.NewChunkService(chunkRepo, queueRepo, clock),
		ReviewService:   reviewService,
		TransferService: services.NewTransferService(chunkRepo, importRepo, jobQueue, clock),
		ExerciseService: services.NewExerciseService(chunkRepo, exerciseRepo, llmClient),
		StatsService:    services.NewStatsService(statsRepo, clock),
		AuthService:     authService,
		DB:              database,
		Templates:       tmpl,
		SecureCookies:   cfg.SecureCookies,
	}

	scheduler, err := cron.New(reviewService, authService, cfg.QueueRefreshAt, time.Local)
	if err != nil {
		log.Error("failed to create scheduler: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	importPool.Start(ctx)
	scheduler.Start(logger.NewContext(ctx, log))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
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

	log.Debug("stopping scheduler")
	scheduler.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping import pool")
	importPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("Chunk Recall Trainer Stopped")
	log.Info("===========================================")
}
