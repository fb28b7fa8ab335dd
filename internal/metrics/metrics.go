// Package metrics provides Prometheus metrics for the pipeline commands.
// The pipeline is batch-oriented, so instead of an HTTP endpoint each run
// exports its registry to a textfile in the output directory, in the format
// the node_exporter textfile collector scrapes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and gauges one pipeline invocation populates.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion metrics
	TrainingRowsIngested  prometheus.Gauge // labeled rows accepted into the store
	CandidateRowsIngested prometheus.Gauge // candidate rows accepted into the store

	// Training metrics
	TrainingDuration prometheus.Gauge // wall-clock seconds of the last fit
	EvalR2           prometheus.Gauge // held-out coefficient of determination
	EvalMAE          prometheus.Gauge // held-out mean absolute error

	// Scoring metrics
	CandidatesScored prometheus.Gauge // predictions emitted by the last run

	// Failure metrics
	ContractViolations prometheus.Counter // schema/contract errors observed
}

// New creates metrics on a private registry so concurrent test runs never
// collide on the global one.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		TrainingRowsIngested: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitescout_training_rows_ingested",
			Help: "Labeled location rows accepted into the store by the last ingest.",
		}),
		CandidateRowsIngested: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitescout_candidate_rows_ingested",
			Help: "Candidate location rows accepted into the store by the last ingest.",
		}),
		TrainingDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitescout_training_duration_seconds",
			Help: "Wall-clock duration of the last training run.",
		}),
		EvalR2: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitescout_eval_r2",
			Help: "Held-out R-squared of the last training run.",
		}),
		EvalMAE: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitescout_eval_mae",
			Help: "Held-out mean absolute error of the last training run.",
		}),
		CandidatesScored: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitescout_candidates_scored",
			Help: "Predictions emitted by the last scoring run.",
		}),
		ContractViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitescout_contract_violations_total",
			Help: "Schema or feature-contract violations observed.",
		}),
	}
}

// WriteTextfile exports the registry to path in Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
