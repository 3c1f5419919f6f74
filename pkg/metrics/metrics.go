// Package metrics provides Prometheus metrics for a conversion run.
//
// Metrics live in a private registry so several runs in one process never
// collide, and can be written once at the end of a run as a node-exporter
// textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/stats"
)

const namespace = "bodsmap"

// Set is the metric set of one run. It implements stats.Recorder and counts
// every !alert observation by kind.
type Set struct {
	registry *prometheus.Registry

	// StatementsTotal tracks statements read by statement type
	StatementsTotal *prometheus.CounterVec

	// RecordsWrittenTotal tracks records written to the output
	RecordsWrittenTotal prometheus.Counter

	// AnomaliesTotal tracks soft anomalies by kind
	AnomaliesTotal *prometheus.CounterVec

	// CacheRecords tracks distinct identity keys held by the merge cache
	CacheRecords prometheus.Gauge

	// RunDuration tracks the wall time of the last run in seconds
	RunDuration prometheus.Gauge
}

var _ stats.Recorder = (*Set)(nil)

// New returns a metric set registered on a fresh registry.
func New() *Set {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Set{
		registry: reg,
		StatementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statements_total",
				Help:      "Total number of statements read by statement type",
			},
			[]string{"statement_type"},
		),
		RecordsWrittenTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_written_total",
				Help:      "Total number of records written",
			},
		),
		AnomaliesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "anomalies_total",
				Help:      "Total number of soft anomalies by kind",
			},
			[]string{"kind"},
		),
		CacheRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_records",
				Help:      "Number of distinct identity keys held by the merge cache",
			},
		),
		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of the conversion run in seconds",
			},
		),
	}
}

// Registry returns the private registry.
func (s *Set) Registry() *prometheus.Registry { return s.registry }

// StatementRead counts one statement of the given type.
func (s *Set) StatementRead(statementType string) {
	s.StatementsTotal.WithLabelValues(statementType).Inc()
}

// RecordWritten counts one emitted record.
func (s *Set) RecordWritten() {
	s.RecordsWrittenTotal.Inc()
}

// SetCacheRecords sets the cache size gauge.
func (s *Set) SetCacheRecords(n int) {
	s.CacheRecords.Set(float64(n))
}

// SetRunDuration records the run wall time.
func (s *Set) SetRunDuration(d time.Duration) {
	s.RunDuration.Set(d.Seconds())
}

// Observe implements stats.Recorder.
func (s *Set) Observe(path ...string) {
	if len(path) >= 2 && path[0] == stats.Alert {
		s.AnomaliesTotal.WithLabelValues(path[1]).Inc()
	}
}

// ObserveValue implements stats.Recorder.
func (s *Set) ObserveValue(_ any, path ...string) {
	s.Observe(path...)
}

// WriteTextfile writes the registry in the text exposition format to path.
func (s *Set) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
