package main

import (
	"flag"
	"log"

	"github.com/pageza/nutriwise/backend/config"
	"github.com/pageza/nutriwise/backend/internal/database"
	"github.com/pageza/nutriwise/backend/internal/logging"
	"go.uber.org/zap"
)

func main() {
	rollback := flag.Int("rollback", 0, "Roll back this many migrations (postgres only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, config.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if *rollback > 0 {
		if cfg.DBDriver != "postgres" {
			logger.Fatal("rollback is only supported for postgres", zap.String("driver", cfg.DBDriver))
		}
		if err := database.RollbackMigrations(cfg.PostgresDSN(), *rollback, logger); err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
		return
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.PostgresDSN(), logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
}
