// Package main runs the pairing scheduler: a cron loop that triggers a
// pairing run for every organization.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brewbuddy/backend/config"
	"github.com/brewbuddy/backend/internal/blocks"
	"github.com/brewbuddy/backend/internal/organizations"
	"github.com/brewbuddy/backend/internal/pairing"
	"github.com/brewbuddy/backend/internal/participation"
	"github.com/brewbuddy/backend/internal/settings"
	"github.com/brewbuddy/backend/internal/users"
	"github.com/brewbuddy/backend/pkg/database"
	"github.com/brewbuddy/backend/pkg/queue"
	"github.com/brewbuddy/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	orgRepo := organizations.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	blockRepo := blocks.NewRepository(pool)
	settingsService := settings.NewService(settings.NewRepository(pool), orgRepo)
	tracker := participation.NewTracker(participation.NewRepository(pool))
	jobQueue := queue.NewQueue(rdb.Client, logger)
	hooks := pairing.NewQueueHooks(jobQueue, userRepo, logger)
	periodRepo := pairing.NewPeriodRepository(pool)
	engine := pairing.NewEngine(settingsService, periodRepo, userRepo, blockRepo, tracker, hooks, logger)

	runAll := func() {
		orgs, err := orgRepo.ListAll(ctx)
		if err != nil {
			logger.Error("list organizations", zap.Error(err))
			return
		}
		for _, org := range orgs {
			result, err := engine.ExecutePairing(ctx, org.ID)
			if err != nil {
				// Logged and retried on the next tick; one failing tenant
				// must not stop the sweep.
				continue
			}
			logger.Info("scheduled pairing run",
				zap.String("org_id", org.ID.String()),
				zap.String("slug", org.Slug),
				zap.Int("pairings_created", result.PairingsCreated),
				zap.Int("unpaired_users", result.UnpairedUsers))
		}
	}

	c := cron.New()
	if err := c.AddFunc(cfg.Pairing.CronSpec, runAll); err != nil {
		logger.Fatal("cron spec", zap.String("spec", cfg.Pairing.CronSpec), zap.Error(err))
	}
	c.Start()
	logger.Info("scheduler started", zap.String("spec", cfg.Pairing.CronSpec))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	c.Stop()
	logger.Info("scheduler stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
