// Package metrics exports Prometheus instrumentation for paper search.
//
// A nil *Metrics is valid and records nothing, so callers that do not
// care about instrumentation never need to construct one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "papersearch"

// Metrics holds the collectors of one registry.
type Metrics struct {
	compiled     *prometheus.CounterVec
	warnings     prometheus.Counter
	rowsFetched  prometheus.Counter
	rowsMatched  prometheus.Counter
	refusedJoins prometheus.Counter
	evalDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which tests use to read values directly.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		compiled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "compile",
				Name:      "searches_total",
				Help:      "Searches compiled, by limit.",
			}, []string{"limit"}),
		warnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "compile",
				Name:      "warnings_total",
				Help:      "Warnings attached to compiled searches.",
			}),
		rowsFetched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "eval",
				Name:      "rows_fetched_total",
				Help:      "Candidate rows returned by the planned query.",
			}),
		rowsMatched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "eval",
				Name:      "rows_matched_total",
				Help:      "Candidate rows that passed the in-memory test.",
			}),
		refusedJoins: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "plan",
				Name:      "refused_joins_total",
				Help:      "Optional joins refused by the table cap.",
			}),
		evalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "eval",
				Name:      "duration_seconds",
				Help:      "Bucketed histogram of search evaluation time.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 18),
			}),
	}
	if reg != nil {
		reg.MustRegister(m.compiled, m.warnings, m.rowsFetched, m.rowsMatched, m.refusedJoins, m.evalDuration)
	}
	return m
}

// ObserveCompile records one compiled search.
func (m *Metrics) ObserveCompile(limit string, warnings int) {
	if m == nil {
		return
	}
	m.compiled.WithLabelValues(limit).Inc()
	m.warnings.Add(float64(warnings))
}

// ObserveEvaluation records one evaluation. The gap between fetched and
// matched rows measures how liberal the planned SQL was.
func (m *Metrics) ObserveEvaluation(fetched, matched int, d time.Duration) {
	if m == nil {
		return
	}
	m.rowsFetched.Add(float64(fetched))
	m.rowsMatched.Add(float64(matched))
	m.evalDuration.Observe(d.Seconds())
}

// ObserveRefusedJoins records joins dropped by the table cap.
func (m *Metrics) ObserveRefusedJoins(n int) {
	if m == nil || n == 0 {
		return
	}
	m.refusedJoins.Add(float64(n))
}

// Compiled returns the per-limit compile counter.
func (m *Metrics) Compiled() *prometheus.CounterVec { return m.compiled }

// Warnings returns the warning counter.
func (m *Metrics) Warnings() prometheus.Counter { return m.warnings }

// RowsFetched returns the fetched-rows counter.
func (m *Metrics) RowsFetched() prometheus.Counter { return m.rowsFetched }

// RowsMatched returns the matched-rows counter.
func (m *Metrics) RowsMatched() prometheus.Counter { return m.rowsMatched }

// RefusedJoins returns the refused-join counter.
func (m *Metrics) RefusedJoins() prometheus.Counter { return m.refusedJoins }
