// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline's Prometheus collectors.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	TrainingDuration *prometheus.HistogramVec
	SinkErrors       prometheus.Counter
	EventsExtracted  prometheus.Counter
}

// New builds and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flightscope",
			Name:      "analyses_total",
			Help:      "Completed analyses by aircraft class and risk level.",
		}, []string{"class", "risk_level"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flightscope",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one full analysis.",
			Buckets:   prometheus.DefBuckets,
		}),
		TrainingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flightscope",
			Name:      "training_duration_seconds",
			Help:      "Wall time of one class model training run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"class"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flightscope",
			Name:      "sink_errors_total",
			Help:      "Failed persistence handoffs.",
		}),
		EventsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flightscope",
			Name:      "anomaly_events_total",
			Help:      "Anomaly events emitted across all analyses.",
		}),
	}
	reg.MustRegister(
		m.AnalysesTotal, m.AnalysisDuration, m.TrainingDuration,
		m.SinkErrors, m.EventsExtracted,
	)
	return m
}

var (
	defaultOnce sync.Once
	defaultM    *Metrics
)

// Default returns process-wide metrics registered on the default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultM = New(prometheus.DefaultRegisterer)
	})
	return defaultM
}
