// Package cron provides scheduled background ETL runs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	etlservice "github.com/zizcar/records-etl/internal/domain/etl/service"
)

// Scheduler runs the ETL pipeline on a fixed schedule.
type Scheduler struct {
	cron   *cron.Cron
	etl    *etlservice.Service
	spec   string
	logger *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(etl *etlservice.Service, spec string, logger *slog.Logger) *Scheduler {
	// Standard 5-field cron format, no seconds.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		etl:    etl,
		spec:   spec,
		logger: logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runETL)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("spec", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) runETL() {
	result, err := s.etl.Run(context.Background())
	if err != nil {
		// A manual trigger may be holding the run lock; that is not a fault.
		if errors.Is(err, etlservice.ErrRunInProgress) {
			s.logger.Info("scheduled ETL run skipped: run already in progress")
			return
		}
		s.logger.Error("scheduled ETL run failed", slog.Any("error", err))
		return
	}

	s.logger.Info("scheduled ETL run finished",
		slog.String("message", result.Message),
		slog.Int("count", result.Count),
	)
}
