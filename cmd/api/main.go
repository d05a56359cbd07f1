package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/api/handlers"
	rediscache "github.com/gitscout/backend/internal/cache/redis"
	"github.com/gitscout/backend/internal/github"
	"github.com/gitscout/backend/internal/insight"
	"github.com/gitscout/backend/internal/metrics"
	"github.com/gitscout/backend/internal/middleware/ratelimit"
	"github.com/gitscout/backend/internal/middleware/security"
	"github.com/gitscout/backend/internal/middleware/validation"
	"github.com/gitscout/backend/internal/settings"
	"github.com/gitscout/backend/internal/storage/sqlite"
	"github.com/gitscout/backend/pkg/config"
	appLogger "github.com/gitscout/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting GitScout API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var redisClient *rediscache.Client
	if cfg.Redis.Enabled {
		redisClient, err = rediscache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, scrape caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	settingsSvc, err := settings.NewService(sqliteClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize settings", zap.Error(err))
	}

	ghClient := github.NewClient(cfg.GitHub.UserAgent, time.Duration(cfg.GitHub.TimeoutSec)*time.Second)
	trending := github.NewTrendingScraper(ghClient, redisClient, time.Duration(cfg.GitHub.TrendingTTLSec)*time.Second)

	insightCache := insight.NewCache(cfg.Insights.DataDir)
	insightSvc := insight.NewService(insightCache, ghClient, settingsSvc, cfg.Insights.ModelCacheHours)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 120,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()
	app.Use(rateLimiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	repoHandler := handlers.NewRepoHandler(ghClient, trending, sqliteClient, settingsSvc)
	insightHandler := handlers.NewInsightHandler(insightSvc)
	configHandler := handlers.NewConfigHandler(settingsSvc, insightSvc)
	summarizeHandler := handlers.NewSummarizeHandler(insightSvc)

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")

	api.Get("/repos/trending", repoHandler.Trending)
	api.Get("/repos/search", repoHandler.Search)
	api.Post("/repos/favorite", repoHandler.ToggleFavorite)
	api.Get("/repos/favorites", repoHandler.ListFavorites)
	api.Get("/repos/favorite", repoHandler.IsFavorite)

	api.Get("/insights/:author/:name", insightHandler.GetCached)
	api.Post("/insights/check", insightHandler.CheckBatch)

	api.Get("/configs", configHandler.List)
	api.Post("/configs", configHandler.Create)
	// Registered before /configs/:id so "model-cache" is not taken as an id.
	api.Delete("/configs/model-cache", configHandler.ClearModelCache)
	api.Patch("/configs/:id", configHandler.Update)
	api.Delete("/configs/:id", configHandler.Delete)
	api.Post("/configs/:id/activate", configHandler.SetActive)
	api.Get("/configs/:id/models", configHandler.ListModels)
	api.Post("/configs/:id/test", configHandler.TestConnection)
	api.Get("/vendors", configHandler.Vendors)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/summarize", websocket.New(summarizeHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
