// Package main runs the coffee-pairing platform HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brewbuddy/backend/config"
	"github.com/brewbuddy/backend/internal/achievements"
	"github.com/brewbuddy/backend/internal/auth"
	"github.com/brewbuddy/backend/internal/blocks"
	"github.com/brewbuddy/backend/internal/middleware"
	"github.com/brewbuddy/backend/internal/models"
	"github.com/brewbuddy/backend/internal/organizations"
	"github.com/brewbuddy/backend/internal/pairing"
	"github.com/brewbuddy/backend/internal/participation"
	"github.com/brewbuddy/backend/internal/settings"
	"github.com/brewbuddy/backend/internal/users"
	"github.com/brewbuddy/backend/pkg/database"
	"github.com/brewbuddy/backend/pkg/queue"
	"github.com/brewbuddy/backend/pkg/redis"
	"github.com/brewbuddy/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo)

	// User directory
	userRepo := users.NewRepository(pool)

	// Blocks
	blockRepo := blocks.NewRepository(pool)
	blockHandler := blocks.NewHandler(blockRepo, orgRepo)

	// Algorithm settings
	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo, orgRepo)
	settingsHandler := settings.NewHandler(settingsService)

	// Cycle participation
	participationRepo := participation.NewRepository(pool)
	tracker := participation.NewTracker(participationRepo)
	participationHandler := participation.NewHandler(tracker)

	// Achievements
	achievementRepo := achievements.NewRepository(pool)
	achievementHandler := achievements.NewHandler(achievementRepo)

	// Pairing engine
	periodRepo := pairing.NewPeriodRepository(pool)
	hooks := pairing.NewQueueHooks(jobQueue, userRepo, logger)
	engine := pairing.NewEngine(settingsService, periodRepo, userRepo, blockRepo, tracker, hooks, logger)
	pairingHandler := pairing.NewHandler(engine, periodRepo, orgRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (platform admin)
		api.GET("/users", middleware.RequireRole(string(models.RoleAdmin)), authHandler.List)

		// Organizations
		api.GET("/organizations", orgHandler.ListMyOrganizations)
		api.POST("/organizations", orgHandler.CreateOrganization)
		api.POST("/organizations/join", orgHandler.JoinOrganization)
		api.GET("/organizations/:id/members", orgHandler.ListMembers)

		// Algorithm settings (update requires org admin, checked in service)
		api.GET("/organizations/:id/settings", settingsHandler.Get)
		api.PUT("/organizations/:id/settings", settingsHandler.Update)

		// Pairing
		api.POST("/organizations/:id/pairing/run", pairingHandler.Run)
		api.GET("/organizations/:id/periods", pairingHandler.ListPeriods)
		api.GET("/periods/:id/pairings", pairingHandler.ListPairings)

		// Blocks
		api.GET("/organizations/:id/blocks", blockHandler.ListMine)
		api.POST("/organizations/:id/blocks", blockHandler.Create)
		api.DELETE("/organizations/:id/blocks/:blockedId", blockHandler.Delete)

		// Participation + achievements
		api.GET("/organizations/:id/participation", participationHandler.GetMine)
		api.GET("/achievements", achievementHandler.ListMine)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
