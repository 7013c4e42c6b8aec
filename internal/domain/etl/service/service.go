// Package service orchestrates the ETL pipeline: locate, extract, parse,
// audit, load.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zizcar/records-etl/internal/domain/etl/parser"
	"github.com/zizcar/records-etl/internal/domain/records"
	"github.com/zizcar/records-etl/pkg/metrics"
)

// ErrRunInProgress is returned when a run is triggered while another one is
// still executing. Runs are never queued; the caller retries.
var ErrRunInProgress = errors.New("an ETL run is already in progress")

// Result messages returned to the trigger.
const (
	MessageProcessed      = "ETL processed successfully"
	MessageNoRecordsFound = "No records found"
)

// DocumentLocator resolves the source document path.
type DocumentLocator interface {
	Resolve(ctx context.Context) (string, error)
}

// TextExtractor decodes a document into candidate invoice lines.
type TextExtractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

// AuditWriter persists the raw and normalized datasets of one run.
type AuditWriter interface {
	Write(ctx context.Context, raw []string, recs []parser.Record) error
}

// RecordStore persists normalized records idempotently by business key.
type RecordStore interface {
	UpsertBatch(ctx context.Context, recs []records.Record) error
}

// RunResult summarizes one pipeline invocation.
type RunResult struct {
	RunID   uuid.UUID `json:"-"`
	Message string    `json:"message"`
	Count   int       `json:"count"`
}

// Service runs the pipeline end to end, one invocation at a time.
type Service struct {
	locator   DocumentLocator
	extractor TextExtractor
	auditor   AuditWriter
	store     RecordStore
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// mu serializes runs: concurrent runs would race on the audit files.
	mu sync.Mutex
}

// New creates the pipeline orchestrator.
func New(
	locator DocumentLocator,
	extractor TextExtractor,
	auditor AuditWriter,
	store RecordStore,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		locator:   locator,
		extractor: extractor,
		auditor:   auditor,
		store:     store,
		logger:    logger,
		metrics:   m,
	}
}

// Run executes one synchronous pipeline invocation to completion or failure.
// Per-line problems drop the line and continue; only a missing or undecodable
// document and audit or storage failures abort the run.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	runID := uuid.New()
	logger := s.logger.With(slog.String("run_id", runID.String()))
	logger.Info("starting ETL run")

	result, err := s.run(ctx, runID, logger)
	if err != nil {
		s.metrics.RunsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		logger.Error("ETL run failed", slog.Any("error", err))
		return nil, err
	}

	if result.Count == 0 {
		s.metrics.RunsTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
	} else {
		s.metrics.RunsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}
	logger.Info("ETL run finished",
		slog.String("message", result.Message),
		slog.Int("count", result.Count),
	)
	return result, nil
}

func (s *Service) run(ctx context.Context, runID uuid.UUID, logger *slog.Logger) (*RunResult, error) {
	path, err := s.locator.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}

	lines, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	s.metrics.LinesExtracted.Add(float64(len(lines)))

	parsed := parser.Parse(lines)
	s.observeDrops(logger, parsed.Drops)

	recs := s.toRecords(logger, parsed.Records)

	if len(recs) == 0 {
		logger.Warn("no records found in document", slog.String("path", path))
		return &RunResult{RunID: runID, Message: MessageNoRecordsFound, Count: 0}, nil
	}

	if err := s.auditor.Write(ctx, lines, parsed.Records); err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	if err := s.store.UpsertBatch(ctx, recs); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	s.metrics.RecordsLoaded.Add(float64(len(recs)))

	return &RunResult{RunID: runID, Message: MessageProcessed, Count: len(recs)}, nil
}

// observeDrops makes every dropped line visible: pattern mismatches are the
// pipeline's most likely silent-data-loss point.
func (s *Service) observeDrops(logger *slog.Logger, drops []parser.Drop) {
	for _, drop := range drops {
		switch drop.Reason {
		case parser.DropNormalization:
			s.metrics.LinesDropped.WithLabelValues(metrics.ReasonNormalization).Inc()
			logger.Warn("record dropped during normalization",
				slog.String("line", drop.Line),
				slog.Any("error", drop.Err),
			)
		default:
			s.metrics.LinesDropped.WithLabelValues(metrics.ReasonPatternMismatch).Inc()
			logger.Debug("line did not match record pattern", slog.String("line", drop.Line))
		}
	}
}

// toRecords converts normalized records into their persisted form. The date
// was validated during normalization, so a conversion failure here is a bug;
// it is still treated as a per-line drop rather than a run failure.
func (s *Service) toRecords(logger *slog.Logger, parsed []parser.Record) []records.Record {
	recs := make([]records.Record, 0, len(parsed))
	for _, p := range parsed {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			s.metrics.LinesDropped.WithLabelValues(metrics.ReasonNormalization).Inc()
			logger.Warn("record dropped: unparseable normalized date",
				slog.String("source_id", p.SourceID),
				slog.String("date", p.Date),
			)
			continue
		}

		var description *string
		if p.Description != "" {
			d := p.Description
			description = &d
		}

		recs = append(recs, records.Record{
			SourceID:    p.SourceID,
			Date:        date,
			Category:    p.Category,
			Amount:      p.Amount,
			Status:      p.Status,
			Description: description,
		})
	}
	return recs
}
