package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/repository"
)

const namespace = "cryptobrain"

var _ repository.Metrics = (*Recorder)(nil)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	analyses    *prometheus.CounterVec
	discovered  *prometheus.CounterVec
	accepted    *prometheus.CounterVec
	deactivated *prometheus.CounterVec
	minWinRate  prometheus.Gauge
	errors      *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New registers on the default registry. Call once per process.
func New() *Recorder { return NewWith(prometheus.DefaultRegisterer) }

// NewWith registers on reg.
func NewWith(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confluence_signals_total",
			Help:      "Confluence evaluations by overall signal",
		}, []string{"symbol", "signal"}),
		discovered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_discovered_total",
			Help:      "Candidate patterns produced by mining passes",
		}, []string{"symbol"}),
		accepted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_accepted_total",
			Help:      "Patterns that cleared the acceptance rule",
		}, []string{"symbol"}),
		deactivated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_deactivated_total",
			Help:      "Patterns retired by the tuner",
		}, []string{"symbol"}),
		minWinRate: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "min_win_rate",
			Help:      "Current tuned acceptance win rate",
		}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by kind",
		}, []string{"kind"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of operations in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation"}),
	}
}

func (r *Recorder) RecordAnalysis(symbol string, overall models.Action, seconds float64) {
	r.analyses.WithLabelValues(symbol, string(overall)).Inc()
	r.latency.WithLabelValues("analysis").Observe(seconds)
}

func (r *Recorder) RecordMining(symbol string, discovered, accepted, deactivated int, seconds float64) {
	r.discovered.WithLabelValues(symbol).Add(float64(discovered))
	r.accepted.WithLabelValues(symbol).Add(float64(accepted))
	r.deactivated.WithLabelValues(symbol).Add(float64(deactivated))
	r.latency.WithLabelValues("mining").Observe(seconds)
}

func (r *Recorder) RecordThreshold(minWinRate float64) { r.minWinRate.Set(minWinRate) }

func (r *Recorder) RecordError(kind string) { r.errors.WithLabelValues(kind).Inc() }

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
