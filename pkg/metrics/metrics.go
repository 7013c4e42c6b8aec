// Package metrics exposes Prometheus instrumentation for the ETL pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons recorded on LinesDropped.
const (
	ReasonPatternMismatch = "pattern_mismatch"
	ReasonNormalization   = "normalization"
)

// Run outcomes recorded on RunsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeFailure = "failure"
)

// Metrics holds the pipeline collectors. Collectors are registered on the
// registerer passed to New so that tests can use isolated registries.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	LinesExtracted prometheus.Counter
	LinesDropped   *prometheus.CounterVec
	RecordsLoaded  prometheus.Counter
}

// New creates and registers the ETL collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etl_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		LinesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etl_candidate_lines_total",
			Help: "Candidate invoice lines extracted from source documents.",
		}),
		LinesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etl_lines_dropped_total",
			Help: "Candidate lines dropped during parsing by reason.",
		}, []string{"reason"}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etl_records_loaded_total",
			Help: "Normalized records upserted into storage.",
		}),
	}

	reg.MustRegister(m.RunsTotal, m.LinesExtracted, m.LinesDropped, m.RecordsLoaded)
	return m
}
