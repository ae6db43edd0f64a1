// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline outcomes recorded per processed question.
const (
	OutcomeAnswered = "answered"
	OutcomeRefused  = "refused"
	OutcomeFailed   = "failed"
	OutcomeError    = "error"
)

// Recorder collects pipeline-level metrics. A nil Recorder is a no-op, so
// callers never have to branch on whether metrics are enabled.
type Recorder struct {
	questions *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "text2sql_questions_total",
			Help: "Questions processed by the pipeline, partitioned by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "text2sql_pipeline_duration_seconds",
			Help:    "End-to-end duration of one pipeline run.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	reg.MustRegister(r.questions, r.duration)
	return r
}

// ObserveQuestion records the outcome and duration of one pipeline run.
func (r *Recorder) ObserveQuestion(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.questions.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}
