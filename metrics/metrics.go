// Package metrics provides Prometheus metrics for local model evaluation:
// predictions and failures per model kind, prediction latency, tree
// traversal depth and vote combinations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the evaluator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Predictions       *prometheus.CounterVec   // Predictions made, by model kind
	PredictionErrors  *prometheus.CounterVec   // Predictions that failed, by model kind
	PredictionLatency *prometheus.HistogramVec // Prediction latency in seconds, by model kind
	Resolutions       *prometheus.CounterVec   // Model references resolved, by reference form
	TraversalDepth    prometheus.Histogram     // Depth reached by tree traversals
	Combinations      prometheus.Counter       // Vote lists combined
}

// New creates and registers the metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bigml_predictions_total",
			Help: "Total number of predictions made",
		}, []string{"kind"}),
		PredictionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bigml_prediction_errors_total",
			Help: "Total number of predictions that failed",
		}, []string{"kind"}),
		PredictionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bigml_prediction_latency_seconds",
			Help:    "Prediction latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"kind"}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bigml_resolutions_total",
			Help: "Total number of model references resolved",
		}, []string{"source"}),
		TraversalDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bigml_traversal_depth",
			Help:    "Depth reached by tree traversals",
			Buckets: prometheus.LinearBuckets(0, 2, 16),
		}),
		Combinations: factory.NewCounter(prometheus.CounterOpts{
			Name: "bigml_vote_combinations_total",
			Help: "Total number of vote lists combined",
		}),
	}
}

// ObservePrediction records a prediction of the given kind that took d
// and failed when err is not nil.
func (m *Metrics) ObservePrediction(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.PredictionErrors.WithLabelValues(kind).Inc()
		return
	}
	m.Predictions.WithLabelValues(kind).Inc()
	m.PredictionLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveResolution records a reference resolved from the given source.
func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(source).Inc()
}

// ObserveDepth records the depth a traversal reached.
func (m *Metrics) ObserveDepth(depth int) {
	if m == nil {
		return
	}
	m.TraversalDepth.Observe(float64(depth))
}

// ObserveCombination records a combined vote list.
func (m *Metrics) ObserveCombination() {
	if m == nil {
		return
	}
	m.Combinations.Inc()
}
