// Package metrics records analysis outcomes as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeTimeout  = "timeout"
	OutcomeFailure  = "failure"
	OutcomeFallback = "fallback"
)

// Recorder groups the analysis collectors on a dedicated registry.
type Recorder struct {
	Registry *prometheus.Registry

	analyses    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	suggestions *prometheus.CounterVec
}

// New returns a recorder with freshly registered collectors.
func New() *Recorder {
	rec := &Recorder{
		Registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spectag_analyses_total",
				Help: "Total number of analyses by engine and outcome",
			},
			[]string{"engine", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spectag_analysis_duration_seconds",
				Help:    "Wall clock duration of analyses",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
			},
			[]string{"engine"},
		),
		suggestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spectag_suggestions_total",
				Help: "Total number of suggestions produced by engine",
			},
			[]string{"engine"},
		),
	}

	rec.Registry.MustRegister(rec.analyses, rec.duration, rec.suggestions)

	return rec
}

// Observe records one analysis attempt. A nil recorder is a no-op.
func (r *Recorder) Observe(engine, outcome string, elapsed time.Duration, suggestions int) {
	if r == nil {
		return
	}

	r.analyses.WithLabelValues(engine, outcome).Inc()
	r.duration.WithLabelValues(engine).Observe(elapsed.Seconds())
	r.suggestions.WithLabelValues(engine).Add(float64(suggestions))
}

// WriteTextfile writes every collector in the text exposition format, for the node
// exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
