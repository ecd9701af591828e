package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediroute/internal/config"
	"mediroute/internal/handlers"
	"mediroute/internal/middleware"
	"mediroute/internal/repositories/mongodb"
	"mediroute/internal/services"
	"mediroute/pkg/cache"
	"mediroute/pkg/database"
	"mediroute/pkg/logger"
	"mediroute/pkg/maps"
	"mediroute/pkg/push"
	"mediroute/pkg/websocket"
	"mediroute/routes"

	"github.com/gin-gonic/gin"
)

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

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Backing stores
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

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := database.EnsureIndexes(startupCtx, db.Database); err != nil {
		appLogger.Fatalf("Failed to ensure indexes: %v", err)
	}

	// External providers
	routingProvider, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
	if err != nil {
		appLogger.Fatalf("Failed to initialize maps provider: %v", err)
	}

	var pushProvider push.PushProvider
	if cfg.Push.Enabled {
		pushProvider, err = push.NewFCMProvider(cfg.Push.Credentials)
		if err != nil {
			appLogger.Fatalf("Failed to initialize push provider: %v", err)
		}
	}

	// Services and repositories
	cacheService := services.NewCacheService(redisCache, appLogger, "mediroute", 15*time.Minute)
	notificationService := services.NewNotificationService(cacheService, pushProvider, appLogger)

	tokenRepo := mongodb.NewTokenRepository(db.Database, cacheService)
	ambulanceRepo := mongodb.NewAmbulanceRepository(db.Database)
	hospitalRepo := mongodb.NewHospitalRepository(db.Database)
	updateRepo := mongodb.NewHospitalUpdateRepository(db.Database)

	specialtyService := services.NewSpecialtyService(hospitalRepo, updateRepo, cfg.Dispatch, appLogger)
	recommendationService := services.NewRecommendationService(specialtyService, cfg.Dispatch, appLogger)
	hospitalService := services.NewHospitalService(hospitalRepo, updateRepo, specialtyService, notificationService, appLogger)
	ambulanceService := services.NewAmbulanceService(ambulanceRepo, notificationService, appLogger)
	capacityService := services.NewCapacityService(hospitalRepo, cacheService, notificationService, cfg.Simulator, appLogger)
	dispatchService := services.NewDispatchService(
		tokenRepo, ambulanceRepo, hospitalRepo,
		recommendationService, routingProvider, notificationService,
		cfg.Dispatch, appLogger,
	)

	if _, err := hospitalService.SeedDirectory(startupCtx); err != nil {
		appLogger.Fatalf("Failed to seed hospital directory: %v", err)
	}

	// Live updates: row events published on redis fan out to websocket rooms.
	wsHandler := websocket.NewHandler()
	go bridgeRowEvents(redisCache, wsHandler, appLogger)

	simulatorCtx, stopSimulator := context.WithCancel(context.Background())
	defer stopSimulator()
	if cfg.Simulator.Enabled {
		if err := capacityService.Start(simulatorCtx); err != nil {
			appLogger.Fatalf("Failed to start capacity simulator: %v", err)
		}
		defer capacityService.Stop()
	}

	// Handlers
	dispatchHandler := handlers.NewDispatchHandler(dispatchService)
	hospitalHandler := handlers.NewHospitalHandler(hospitalService, capacityService)
	ambulanceHandler := handlers.NewAmbulanceHandler(ambulanceService)
	healthHandler := handlers.NewHealthHandler(db, cacheService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	v1 := router.Group("/api/v1")
	{
		routes.SetupTokenRoutes(v1, dispatchHandler)
		routes.SetupAmbulanceRoutes(v1, ambulanceHandler, dispatchHandler)
		routes.SetupHospitalRoutes(v1, hospitalHandler)
	}

	router.GET("/health", healthHandler.Health)
	router.GET(cfg.WebSocket.Path, middleware.ActorMiddleware(), wsHandler.HandleWebSocket)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Starting %s on port %d", cfg.App.Name, cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}

// bridgeRowEvents copies redis row-event messages onto the websocket hub so
// every server instance sees changes made through any other instance.
func bridgeRowEvents(redisCache *cache.RedisCache, wsHandler *websocket.Handler, log *logger.Logger) {
	pubsub := redisCache.Subscribe(context.Background(), services.RowEventChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		wsHandler.GetHub().Broadcast([]byte(msg.Payload))
	}
	log.Warn("Row event subscription closed")
}
