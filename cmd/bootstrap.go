package cmd

import (
	"context"
	"fmt"

	"company-manager/core/backend"
	"company-manager/core/config"
	"company-manager/core/database"
	"company-manager/core/logger"
	"company-manager/core/storage"
	"company-manager/feature/companies"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadRuntime loads the configuration and the logger every command starts from.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logg, nil
}

// openRepository connects to the catalogue database and prepares its
// schema. Persistence is optional: failures are logged and yield nil.
func openRepository(ctx context.Context, cfg database.Config, logg *zap.Logger) (*gorm.DB, *companies.Repository) {
	if cfg.Driver == "" {
		logg.Info("Database disabled")
		return nil, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
		return nil, nil
	}

	repo := companies.NewRepository(db)
	if err := repo.Prepare(ctx); err != nil {
		logg.Warn("Failed to prepare catalogue schema", zap.Error(err))
		return db, nil
	}
	logg.Info("Connected to catalogue database", zap.String("driver", cfg.Driver))
	return db, repo
}

// openStorage connects to the snapshot bucket, creating it when missing.
// Exports are optional: failures are logged and yield nil.
func openStorage(ctx context.Context, cfg storage.Config, logg *zap.Logger) (storage.Client, *companies.Exporter) {
	if !cfg.IsEnabled() {
		logg.Info("Snapshot storage disabled")
		return nil, nil
	}

	client, err := storage.NewClient(cfg)
	if err != nil {
		logg.Warn("Optional storage client failed", zap.Error(err))
		return nil, nil
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		logg.Warn("Snapshot bucket unavailable", zap.String("bucket", cfg.Bucket), zap.Error(err))
		return client, nil
	}
	return client, companies.NewExporter(client, cfg, logg)
}

// newPortal creates the portal client.
func newPortal(cfg backend.Config, logg *zap.Logger) (*backend.Client, error) {
	portal, err := backend.NewClient(cfg, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal client: %w", err)
	}
	return portal, nil
}
