// Command etl runs the pipeline once and prints the run summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zizcar/records-etl/internal/domain/etl/auditor"
	"github.com/zizcar/records-etl/internal/domain/etl/extractor"
	"github.com/zizcar/records-etl/internal/domain/etl/locator"
	etlservice "github.com/zizcar/records-etl/internal/domain/etl/service"
	"github.com/zizcar/records-etl/internal/domain/records"
	"github.com/zizcar/records-etl/pkg/config"
	"github.com/zizcar/records-etl/pkg/db"
	"github.com/zizcar/records-etl/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	inputPath := flag.String("input", "", "path to the source PDF (overrides ETL_INPUT_PATH)")
	auditDir := flag.String("audit-dir", "", "audit output directory (overrides ETL_AUDIT_DIR)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := run(logger, *inputPath, *auditDir); err != nil {
		logger.Error("ETL failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, inputPath, auditDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if inputPath != "" {
		cfg.ETL.InputPath = inputPath
	}
	if auditDir != "" {
		cfg.ETL.AuditDir = auditDir
	}

	ctx := context.Background()

	database, err := db.New(ctx, db.Config{DSN: cfg.Database.DSN(), MaxConns: 5}, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	svc := etlservice.New(
		locator.New(cfg.ETL.InputPath),
		extractor.New(logger),
		auditor.New(cfg.ETL.AuditDir, logger),
		records.NewPostgresRepository(database.Pool, logger),
		logger,
		metrics.New(prometheus.NewRegistry()),
	)

	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(result)
}
