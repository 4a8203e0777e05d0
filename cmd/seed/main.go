package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ghuser/appdirectory/pkg/config"
	"github.com/ghuser/appdirectory/pkg/database"
	"github.com/ghuser/appdirectory/pkg/logger"
	"github.com/ghuser/appdirectory/services/application/domain/models"
	"github.com/ghuser/appdirectory/services/application/infrastructure/persistence/postgres"
	"github.com/ghuser/appdirectory/services/application/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	ctx := context.Background()

	apps, err := loadDataset(cfg.SeedFile)
	if err != nil {
		log.Error("failed to load seed dataset", "file", cfg.SeedFile, "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck

	// Seeding publishes no events: the API and worker are not expected to be
	// running yet, and caches start empty.
	repo := postgres.NewApplicationRepository(pool, nil)
	if _, err := seed.Run(ctx, repo, apps, log); err != nil {
		log.Error("seed failed", "error", err)
		_ = pool.Close()
		os.Exit(1) //nolint:gocritic
	}
}

func loadDataset(path string) ([]*models.Application, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return seed.Load(f)
}
