package gateway

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "bacbot"

// Metrics tracks relay counters. Every event is counted twice: in atomics
// for the JSON snapshot, and in Prometheus collectors for /metrics.
type Metrics struct {
	updates     atomic.Int64
	games       atomic.Int64
	commands    atomic.Int64
	predictions atomic.Int64
	wins        atomic.Int64
	losses      atomic.Int64
	expired     atomic.Int64
	errors      atomic.Int64
	totalNanos  atomic.Int64

	registry       *prometheus.Registry
	updatesVec     *prometheus.CounterVec
	outcomesVec    *prometheus.CounterVec
	errorsVec      *prometheus.CounterVec
	handleDuration prometheus.Histogram
}

// NewMetrics creates Metrics backed by a private Prometheus registry that
// also carries the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updatesVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Inbound updates handled, by kind.",
		}, []string{"kind"}),
		outcomesVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction lifecycle events, by outcome.",
		}, []string{"outcome"}),
		errorsVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Processing errors, by stage.",
		}, []string{"stage"}),
		handleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Time spent handling one inbound update.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.updatesVec,
		m.outcomesVec,
		m.errorsVec,
		m.handleDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry served on /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Update kinds.
const (
	KindGame    = "game"
	KindCommand = "command"
	KindIgnored = "ignored"
)

// Prediction outcomes.
const (
	OutcomeCreated = "created"
	OutcomeWon     = "won"
	OutcomeLost    = "lost"
	OutcomeExpired = "expired"
)

// RecordUpdate records a handled inbound update of the given kind.
func (m *Metrics) RecordUpdate(kind string, took time.Duration) {
	m.updates.Add(1)
	switch kind {
	case KindGame:
		m.games.Add(1)
	case KindCommand:
		m.commands.Add(1)
	}
	m.totalNanos.Add(int64(took))
	m.updatesVec.WithLabelValues(kind).Inc()
	m.handleDuration.Observe(took.Seconds())
}

// RecordPrediction records a prediction lifecycle event.
func (m *Metrics) RecordPrediction(outcome string) {
	switch outcome {
	case OutcomeCreated:
		m.predictions.Add(1)
	case OutcomeWon:
		m.wins.Add(1)
	case OutcomeLost:
		m.losses.Add(1)
	case OutcomeExpired:
		m.expired.Add(1)
	}
	m.outcomesVec.WithLabelValues(outcome).Inc()
}

// RecordError records a processing error at the given stage.
func (m *Metrics) RecordError(stage string) {
	m.errors.Add(1)
	m.errorsVec.WithLabelValues(stage).Inc()
}

// Snapshot returns a point-in-time view of the counters. A nil Metrics
// yields the zero snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	updates := m.updates.Load()
	snap := MetricsSnapshot{
		Updates:     updates,
		Games:       m.games.Load(),
		Commands:    m.commands.Load(),
		Predictions: m.predictions.Load(),
		Wins:        m.wins.Load(),
		Losses:      m.losses.Load(),
		Expired:     m.expired.Load(),
		Errors:      m.errors.Load(),
	}
	if updates > 0 {
		snap.AvgLatency = time.Duration(m.totalNanos.Load() / updates)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Updates     int64         `json:"updates"`
	Games       int64         `json:"games"`
	Commands    int64         `json:"commands"`
	Predictions int64         `json:"predictions"`
	Wins        int64         `json:"wins"`
	Losses      int64         `json:"losses"`
	Expired     int64         `json:"expired"`
	Errors      int64         `json:"errors"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
