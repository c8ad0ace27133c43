// Package metrics exposes Prometheus instruments for the analysis
// pipeline: model training, prediction failures and per-stage latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TrainingRuns counts completed model training runs per symbol.
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksage_model_training_runs_total",
			Help: "Total number of completed model training runs",
		},
		[]string{"symbol"},
	)

	// TrainingDuration observes wall-clock training time in seconds.
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stocksage_model_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PredictionErrors counts failed model predictions per symbol.
	PredictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksage_prediction_errors_total",
			Help: "Total number of failed model predictions",
		},
		[]string{"symbol"},
	)

	// AnalysisDuration observes per-stage latency of an analysis request.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocksage_analysis_stage_duration_seconds",
			Help:    "Duration of analysis pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// AdvisoryRequests counts advisory opinion requests by outcome.
	AdvisoryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksage_advisory_requests_total",
			Help: "Total number of advisory opinion requests by outcome",
		},
		[]string{"outcome"},
	)

	// DataFetches counts historical data fetches by source and outcome.
	DataFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksage_data_fetches_total",
			Help: "Total number of historical data fetches by source and outcome",
		},
		[]string{"source", "outcome"},
	)
)
