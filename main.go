// main.go
package main

import (
	"context"
	"log"

	"movie-comments/cmd"
	"movie-comments/internal/data/repository"
	"movie-comments/internal/data/seed"
	"movie-comments/internal/wire"
	"movie-comments/pkg/cache"
	"movie-comments/pkg/database"
	"movie-comments/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	ctx := context.Background()

	if err := seed.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	if config.App.SeedOnStart {
		if err := seed.Run(ctx, db); err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
		logger.Info("Database seeded",
			zap.Int("movies", len(seed.Movies)),
			zap.Int("comments", len(seed.Comments)),
		)
	}

	// Comment list cache
	var listCache cache.CommentCache = cache.Noop{}
	if config.Redis.Enabled() {
		client, err := cache.Connect(ctx, config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, list cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			listCache = cache.NewRedisCache(client, config.Redis.TTL, logger)
			logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
		}
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, db, listCache, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}
