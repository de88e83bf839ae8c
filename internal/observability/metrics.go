// Package observability provides Prometheus metrics for dataset refreshes
// and lookups.
//
// Metrics include:
//   - Refresh counters and durations by dataset and status
//   - Record gauges for the currently published datasets
//   - Malformed record counters by dataset
//   - Lookup counters by outcome
//   - Memo cache hit/miss counters by cache
//
// The serve command exposes them on /metrics. A nil *Metrics is valid and
// records nothing, so one-shot commands and tests can skip registration.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics.
const metricsNamespace = "factsheets"

// Subsystems.
const (
	cacheSubsystem  = "cache"
	lookupSubsystem = "lookup"
)

// Refresh statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeRedirect = "redirect"
	OutcomeNotFound = "not_found"
)

// Memo results.
const (
	MemoHit   = "hit"
	MemoMiss  = "miss"
	MemoError = "error"
)

// Metrics holds every collector the application records.
type Metrics struct {
	// RefreshTotal counts refresh attempts.
	// Labels: dataset (substances, categories, erowid, combos), status (success, error)
	RefreshTotal *prometheus.CounterVec

	// RefreshDurationSeconds measures fetch plus post-processing time.
	// Labels: dataset
	RefreshDurationSeconds *prometheus.HistogramVec

	// DatasetRecords is the number of records currently published.
	// Labels: dataset
	DatasetRecords *prometheus.GaugeVec

	// MalformedRecordsTotal counts records skipped during post-processing.
	// Labels: dataset
	MalformedRecordsTotal *prometheus.CounterVec

	// LookupsTotal counts identifier lookups.
	// Labels: outcome (found, redirect, not_found)
	LookupsTotal *prometheus.CounterVec

	// MemoRequestsTotal counts memoised reference lookups.
	// Labels: memo (psychonautwiki, effects, tripsit_wiki), result (hit, miss, error)
	MemoRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors with reg.
// Panics if called twice with the same registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "refresh_total",
				Help:      "Total dataset refreshes by dataset and status",
			},
			[]string{"dataset", "status"},
		),

		RefreshDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "refresh_duration_seconds",
				Help:      "Dataset refresh duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"dataset"},
		),

		DatasetRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "records",
				Help:      "Number of records currently published per dataset",
			},
			[]string{"dataset"},
		),

		MalformedRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "malformed_records_total",
				Help:      "Total upstream records skipped as malformed",
			},
			[]string{"dataset"},
		),

		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: lookupSubsystem,
				Name:      "requests_total",
				Help:      "Total lookups by outcome",
			},
			[]string{"outcome"},
		),

		MemoRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: lookupSubsystem,
				Name:      "memo_requests_total",
				Help:      "Total memoised reference lookups by cache and result",
			},
			[]string{"memo", "result"},
		),
	}
}

// ObserveRefresh records the outcome of one refresh.
// records is only published on success.
func (m *Metrics) ObserveRefresh(dataset string, elapsed time.Duration, records int, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.RefreshTotal.WithLabelValues(dataset, status).Inc()
	m.RefreshDurationSeconds.WithLabelValues(dataset).Observe(elapsed.Seconds())
	if err == nil {
		m.DatasetRecords.WithLabelValues(dataset).Set(float64(records))
	}
}

// AddMalformed counts skipped records.
func (m *Metrics) AddMalformed(dataset string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MalformedRecordsTotal.WithLabelValues(dataset).Add(float64(n))
}

// ObserveLookup counts a lookup outcome.
func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveMemo counts a memo cache result.
func (m *Metrics) ObserveMemo(memo, result string) {
	if m == nil {
		return
	}
	m.MemoRequestsTotal.WithLabelValues(memo, result).Inc()
}
