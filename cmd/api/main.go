package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/nutriwise/backend/config"
	"github.com/pageza/nutriwise/backend/internal/api"
	"github.com/pageza/nutriwise/backend/internal/archive"
	"github.com/pageza/nutriwise/backend/internal/database"
	"github.com/pageza/nutriwise/backend/internal/history"
	"github.com/pageza/nutriwise/backend/internal/logging"
	"github.com/pageza/nutriwise/backend/internal/middleware"
	"github.com/pageza/nutriwise/backend/internal/oracle"
	"github.com/pageza/nutriwise/backend/internal/router"
	"github.com/pageza/nutriwise/backend/internal/server"
	"github.com/pageza/nutriwise/backend/internal/service"
	"github.com/pageza/nutriwise/backend/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, config.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	otelCfg, err := telemetry.LoadConfig()
	if err != nil {
		return err
	}
	shutdownTelemetry, err := telemetry.Init(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to initialise telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, cfg.PostgresDSN(), logger); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = database.NewRedisClient(cfg, logger)
		if err != nil {
			// Continue without caching and rate limiting.
			logger.Warn("redis unavailable", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	client, err := oracle.New(ctx, cfg.Oracle, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	if rdb != nil && cfg.Oracle.CacheTTL > 0 {
		client = oracle.NewCachedClient(client, oracle.NewRedisCache(rdb), cfg.Oracle, logger)
	}

	dietOpts := []service.DietOption{service.WithTimeout(cfg.Oracle.Timeout)}
	if cfg.ArchiveBucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to configure archive bucket: %w", err)
		}
		dietOpts = append(dietOpts, service.WithArchive(archive.FromConfig(s3cfg, logger)))
	}

	store := history.NewStore(db)
	diet, err := service.NewDietService(client, store, logger, dietOpts...)
	if err != nil {
		return err
	}

	deps := api.Deps{
		DB:        db,
		Redis:     rdb,
		Auth:      service.NewAuthService(db, cfg.JWTSecret, logger),
		Profiles:  service.NewProfileService(db),
		Nutrition: diet,
		MealPlans: diet,
		History:   store,
		Logger:    logger,
	}
	if rdb != nil && cfg.RateLimitRequests > 0 {
		deps.RateLimiter = middleware.NewOracleRateLimiter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	}

	srv := server.New(cfg, router.SetupRouter(deps, cfg.AllowedOrigins), logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return err
		}
		return errors.New("server stopped unexpectedly")
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
