package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediroute/internal/config"
	"mediroute/internal/repositories/mongodb"
	"mediroute/internal/services"
	"mediroute/pkg/cache"
	"mediroute/pkg/database"
	"mediroute/pkg/logger"
)

// Standalone capacity simulator. Runs the same random walk the server embeds,
// for deployments that prefer one writer across many API instances.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache, appLogger, "mediroute", 15*time.Minute)
	notificationService := services.NewNotificationService(cacheService, nil, appLogger)
	hospitalRepo := mongodb.NewHospitalRepository(db.Database)
	capacityService := services.NewCapacityService(hospitalRepo, cacheService, notificationService, cfg.Simulator, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := capacityService.Start(ctx); err != nil {
		appLogger.Fatalf("Failed to start capacity simulator: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Stopping capacity simulator")
	capacityService.Stop()
}
