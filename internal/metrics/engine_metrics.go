// Package metrics exposes Prometheus instrumentation for the forecasting
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ForecastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foresight_forecasts_total",
			Help: "Total number of forecasts computed by model type",
		},
		[]string{"model"},
	)

	ForecastErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foresight_forecast_errors_total",
			Help: "Total number of failed engine operations by error kind",
		},
		[]string{"kind"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foresight_cache_hits_total",
			Help: "Total number of prediction cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foresight_cache_misses_total",
			Help: "Total number of prediction cache misses",
		},
	)

	CrossingsPredictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foresight_crossings_predicted_total",
			Help: "Total number of threshold crossings predicted",
		},
	)

	ExhaustionWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foresight_exhaustion_warnings_total",
			Help: "Total number of exhaustion warnings emitted by severity",
		},
		[]string{"severity"},
	)

	ForecastDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foresight_forecast_duration_seconds",
			Help:    "Wall time of a full forecast computation including the sample fetch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

// RecordForecast records a completed forecast for one horizon set.
func RecordForecast(model string) {
	ForecastsTotal.WithLabelValues(model).Inc()
}

// RecordEngineError records a failed engine operation.
func RecordEngineError(kind string) {
	ForecastErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheHit records a prediction cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a prediction cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCrossingPredicted records an emitted threshold crossing.
func RecordCrossingPredicted() {
	CrossingsPredictedTotal.Inc()
}

// RecordExhaustionWarning records an emitted exhaustion warning.
func RecordExhaustionWarning(severity string) {
	ExhaustionWarningsTotal.WithLabelValues(severity).Inc()
}
