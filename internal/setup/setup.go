package setup

import (
	"context"
	"log"
	"time"

	"github.com/parleyhq/parley/internal/database"
	"github.com/parleyhq/parley/internal/database/dbretry"
	"github.com/parleyhq/parley/internal/ranking"
	"github.com/parleyhq/parley/internal/redis"
	"github.com/parleyhq/parley/internal/setup/config"
	"github.com/parleyhq/parley/internal/setup/logging"
	"go.uber.org/zap"
)

// App bundles all core dependencies needed by the engine commands. Each
// field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config       // Application configuration
	Logger       *zap.Logger          // Main application logger
	DB           database.Client      // Database connection pool
	RedisManager *redis.Manager       // Redis connection manager
	Ranking      *ranking.Leaderboard // Hotness leaderboard
}

// InitializeApp bootstraps all dependencies in the correct order, ensuring
// each component has its required dependencies available.
func InitializeApp(ctx context.Context, autoMigrate bool) (*App, error) {
	// Load app configuration
	cfg, configPath, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logger, err := logging.NewLogger(cfg.Debug.LogLevel)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("path", configPath))

	// Backoff parameters apply to every retried transaction
	dbretry.Configure(
		cfg.Retry.MaxRetries,
		time.Duration(cfg.Retry.Delay)*time.Millisecond,
		time.Duration(cfg.Retry.MaxDelay)*time.Millisecond,
	)

	// Redis manager provides the ranking client
	redisManager := redis.NewManager(&cfg.Redis, logger)

	rankingClient, err := redisManager.GetClient(redis.RankingDBIndex)
	if err != nil {
		return nil, err
	}

	leaderboard := ranking.NewLeaderboard(rankingClient, logger)

	// Initialize database with the leaderboard wired into the services
	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, leaderboard, logger, autoMigrate)
	if err != nil {
		redisManager.Close()
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		RedisManager: redisManager,
		Ranking:      leaderboard,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse
// initialization order. Logs but does not fail on cleanup errors so all
// components get a cleanup attempt.
func (s *App) Cleanup(_ context.Context) {
	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	// Close database connections
	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Close Redis connections last as other components might need them
	// during cleanup
	s.RedisManager.Close()
}
