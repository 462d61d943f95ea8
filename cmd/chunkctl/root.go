package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chunkrecall/trainer/internal/config"
	"github.com/chunkrecall/trainer/internal/db"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/repository/sqlite"
	"github.com/chunkrecall/trainer/internal/services"
)

var (
	dbPath    string
	userEmail string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:          "chunkctl",
	Short:        "Manage a Chunk Recall Trainer deck",
	Long:         "Seed, import, export and review Japanese/English chunks in a trainer database without the web UI.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if !cmd.Flags().Changed("db") {
			dbPath = cfg.DBPath
		}
		if !cmd.Flags().Changed("log-level") {
			logLevel = cfg.LogLevel
		}
		level, ok := logger.LookupLevel(logLevel)
		if !ok {
			return fmt.Errorf("invalid --log-level %q: must be one of DEBUG, INFO, WARN, ERROR", logLevel)
		}
		logger.SetDefault(logger.New(logger.WithLevel(level), logger.WithOutput(cmd.ErrOrStderr())))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "file:chunks.db", "SQLite database path (default: $DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&userEmail, "user", "", "email of the learner whose deck to use")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "WARN", "DEBUG, INFO, WARN or ERROR (default: $LOG_LEVEL)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
}

// app is the set of services one command runs against.
type app struct {
	db       *db.DB
	userID   int64
	chunks   services.ChunkService
	reviews  services.ReviewService
	transfer services.TransferService
	stats    services.StatsService
}

// openApp opens the database and resolves --user, creating a local learner
// record the first time an email is used.
func openApp(ctx context.Context) (*app, error) {
	email := strings.TrimSpace(userEmail)
	if email == "" {
		return nil, fmt.Errorf("--user is required")
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	users := sqlite.NewUserRepository(database.DB)
	user, err := users.GetByEmail(ctx, email)
	if stderrors.Is(err, repository.ErrNotFound) {
		user, err = users.Upsert(ctx, "local:"+strings.ToLower(email), email, "")
	}
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("resolving user %s: %w", email, err)
	}

	clock := services.SystemClock
	chunkRepo := sqlite.NewChunkRepository(database.DB)
	queueRepo := sqlite.NewQueueRepository(database.DB)
	return &app{
		db:       database,
		userID:   user.ID,
		chunks:   services.NewChunkService(chunkRepo, queueRepo, clock),
		reviews:  services.NewReviewService(chunkRepo, queueRepo, users, services.DefaultDailyLimit, clock),
		transfer: services.NewTransferService(chunkRepo, sqlite.NewImportRepository(database.DB), nil, clock),
		stats:    services.NewStatsService(sqlite.NewStatsRepository(database.DB), clock),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
