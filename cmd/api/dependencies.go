package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zizcar/records-etl/internal/domain/etl/auditor"
	etlhandler "github.com/zizcar/records-etl/internal/domain/etl/handler"
	"github.com/zizcar/records-etl/internal/domain/etl/extractor"
	"github.com/zizcar/records-etl/internal/domain/etl/locator"
	etlservice "github.com/zizcar/records-etl/internal/domain/etl/service"
	"github.com/zizcar/records-etl/internal/domain/records"
	"github.com/zizcar/records-etl/pkg/config"
	"github.com/zizcar/records-etl/pkg/cron"
	"github.com/zizcar/records-etl/pkg/db"
	"github.com/zizcar/records-etl/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	RecordsRepo records.Repository

	ETLService *etlservice.Service
	Scheduler  *cron.Scheduler

	ETLHandler *etlhandler.ETLHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	deps.Metrics = metrics.New(deps.Registry)

	// Database
	database, err := db.New(ctx, db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: time.Minute,
		DialTimeout:     5 * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	deps.DB = database

	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Repositories
	deps.RecordsRepo = records.NewPostgresRepository(database.Pool, logger)

	// Pipeline
	deps.ETLService = etlservice.New(
		locator.New(cfg.ETL.InputPath),
		extractor.New(logger),
		auditor.New(cfg.ETL.AuditDir, logger),
		deps.RecordsRepo,
		logger,
		deps.Metrics,
	)

	if cfg.Cron.Enabled {
		deps.Scheduler = cron.NewScheduler(deps.ETLService, cfg.Cron.Spec, logger)
	}

	// Handlers
	deps.ETLHandler = etlhandler.NewETLHandler(deps.ETLService, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
