// Package forecast implements metric forecasting and threshold-crossing
// prediction over historical sample windows.
package forecast

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/saashqdev/foresight/internal/errors"
	"github.com/saashqdev/foresight/internal/metrics"
)

// SampleProvider supplies historical samples for one (entity, metric) pair.
// The fetch is the only suspension point in the pipeline; everything past it
// is pure computation.
type SampleProvider interface {
	FetchSamples(ctx context.Context, entityID, metric string, lookback time.Duration) ([]Sample, error)
}

// Config tunes the engine. Zero values are replaced with defaults by
// NewEngine.
type Config struct {
	MinimumSamples  int
	Alpha           float64       // exponential smoothing factor
	ConfidenceLevel float64       // attached to linear prediction intervals
	CrossingGate    float64       // minimum |r| for crossing extrapolation
	MaxLookahead    time.Duration // crossing look-ahead bound
	Lookback        time.Duration // history fetched per invocation
	Catalogue       []ResourceThreshold
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MinimumSamples:  MinimumSamples,
		Alpha:           DefaultAlpha,
		ConfidenceLevel: DefaultConfidenceLevel,
		CrossingGate:    DefaultCrossingGate,
		MaxLookahead:    DefaultMaxLookahead,
		Lookback:        24 * time.Hour,
		Catalogue:       DefaultCatalogue(),
	}
}

// Engine is the forecasting core. Computation is stateless; the injected
// cache is the only cross-call state.
type Engine struct {
	cfg      Config
	provider SampleProvider
	cache    *Cache
	now      func() time.Time
}

// NewEngine creates an engine over the given provider and cache. The cache
// may be nil to disable memoization.
func NewEngine(cfg Config, provider SampleProvider, cache *Cache) *Engine {
	if cfg.MinimumSamples <= 0 {
		cfg.MinimumSamples = MinimumSamples
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		cfg.ConfidenceLevel = DefaultConfidenceLevel
	}
	if cfg.CrossingGate <= 0 {
		cfg.CrossingGate = DefaultCrossingGate
	}
	if cfg.MaxLookahead <= 0 {
		cfg.MaxLookahead = DefaultMaxLookahead
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	if len(cfg.Catalogue) == 0 {
		cfg.Catalogue = DefaultCatalogue()
	}

	return &Engine{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		now:      time.Now,
	}
}

// WithClock substitutes the engine's clock and returns the engine.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Forecast produces one Prediction per requested horizon for the metric.
// The whole horizon set uses a single model, selected once per call.
func (e *Engine) Forecast(ctx context.Context, entityID, metric string, horizons []time.Duration) ([]Prediction, error) {
	start := time.Now()
	defer func() {
		metrics.ForecastDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	if cached, ok := e.cache.Get(entityID, metric, horizons); ok {
		metrics.RecordCacheHit()
		return cached, nil
	}
	metrics.RecordCacheMiss()

	w, err := e.fetchWindow(ctx, "forecast", entityID, metric)
	if err != nil {
		return nil, err
	}

	model, fit, level := e.selectForWindow(entityID, metric, w)

	computedAt := e.now()
	predictions := make([]Prediction, 0, len(horizons))
	for _, horizon := range horizons {
		p := Prediction{
			EntityID:        entityID,
			Metric:          metric,
			Horizon:         horizon,
			Model:           model,
			ConfidenceLevel: e.cfg.ConfidenceLevel,
			ComputedAt:      computedAt,
		}

		switch model {
		case ModelLinearTrend:
			p.PredictedValue, p.ConfidenceLower, p.ConfidenceUpper = forecastLinear(fit, w.Duration(), horizon)
		case ModelExponentialSmoothing:
			p.PredictedValue = level
			p.ConfidenceLower = level
			p.ConfidenceUpper = level
		}

		if !isFinite(p.PredictedValue) || !isFinite(p.ConfidenceLower) || !isFinite(p.ConfidenceUpper) {
			metrics.RecordEngineError(string(apperrors.KindDegenerateWindow))
			return nil, apperrors.DegenerateWindow("forecast", entityID, metric)
		}

		predictions = append(predictions, p)
	}

	e.cache.Put(entityID, metric, horizons, predictions)
	metrics.RecordForecast(string(model))

	log.Debug().
		Str("entity", entityID).
		Str("metric", metric).
		Str("model", string(model)).
		Int("horizons", len(horizons)).
		Int("samples", w.Len()).
		Msg("Computed forecast")

	return predictions, nil
}

// PredictCrossing estimates when the metric will cross the threshold. A
// (nil, nil) return means no crossing is predicted; that is not a failure.
// This path requires a linear fit, so a degenerate window is an error here
// rather than a smoothing fallback.
func (e *Engine) PredictCrossing(ctx context.Context, entityID, metric string, threshold float64, thresholdType ThresholdType, lookahead time.Duration) (*ThresholdCrossing, error) {
	w, err := e.fetchWindow(ctx, "predict_crossing", entityID, metric)
	if err != nil {
		return nil, err
	}

	fit, err := FitTrend(w)
	if err != nil {
		metrics.RecordEngineError(string(apperrors.KindDegenerateWindow))
		return nil, apperrors.DegenerateWindow("predict_crossing", entityID, metric)
	}

	if lookahead <= 0 {
		lookahead = e.cfg.MaxLookahead
	}

	crossing := SolveCrossing(entityID, metric, fit, w, CrossingParams{
		Threshold:      threshold,
		Type:           thresholdType,
		ConfidenceGate: e.cfg.CrossingGate,
		MaxLookahead:   lookahead,
	})
	if crossing == nil {
		return nil, nil
	}

	metrics.RecordCrossingPredicted()

	log.Debug().
		Str("entity", entityID).
		Str("metric", metric).
		Float64("threshold", threshold).
		Time("crossing", crossing.EstimatedCrossing).
		Float64("confidence", crossing.Confidence).
		Msg("Predicted threshold crossing")

	return crossing, nil
}

// CheckExhaustion sweeps the critical-resource catalogue for the entity and
// returns zero or more warnings. Resources with too little history or no
// usable trend are skipped for this cycle; a provider failure aborts the
// sweep and propagates.
func (e *Engine) CheckExhaustion(ctx context.Context, entityID string) ([]ExhaustionWarning, error) {
	now := e.now()
	var warnings []ExhaustionWarning

	for _, res := range e.cfg.Catalogue {
		w, err := e.fetchWindow(ctx, "check_exhaustion", entityID, res.Metric)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindUnavailable {
				return nil, err
			}
			log.Debug().
				Str("entity", entityID).
				Str("resource", res.Metric).
				Err(err).
				Msg("Skipping resource for this cycle")
			continue
		}

		fit, err := FitTrend(w)
		if err != nil {
			log.Debug().
				Str("entity", entityID).
				Str("resource", res.Metric).
				Msg("No usable trend for resource")
			continue
		}

		warning := evaluateExhaustion(entityID, res, fit, w, e.cfg.MaxLookahead, e.cfg.CrossingGate, now)
		if warning == nil {
			continue
		}

		metrics.RecordExhaustionWarning(string(warning.Severity))
		warnings = append(warnings, *warning)
	}

	return warnings, nil
}

// fetchWindow retrieves and validates the sample window for one metric.
func (e *Engine) fetchWindow(ctx context.Context, op, entityID, metric string) (Window, error) {
	samples, err := e.provider.FetchSamples(ctx, entityID, metric, e.cfg.Lookback)
	if err != nil {
		metrics.RecordEngineError(string(apperrors.KindUnavailable))
		return Window{}, apperrors.WrapUnavailable(op, entityID, metric, err)
	}

	w := NewWindow(samples)
	if w.Len() < e.cfg.MinimumSamples {
		metrics.RecordEngineError(string(apperrors.KindInsufficientData))
		return Window{}, apperrors.InsufficientData(op, entityID, metric, w.Len(), e.cfg.MinimumSamples)
	}

	return w, nil
}

// selectForWindow picks the model for a window. A degenerate fit falls back
// silently to exponential smoothing; the smoothed level is computed eagerly
// so callers hold everything the dispatch switch needs.
func (e *Engine) selectForWindow(entityID, metric string, w Window) (ModelType, FitResult, float64) {
	fit, err := FitTrend(w)
	if err != nil {
		log.Debug().
			Str("entity", entityID).
			Str("metric", metric).
			Msg("Degenerate window, falling back to exponential smoothing")
		return ModelExponentialSmoothing, FitResult{}, smoothedLevel(w, e.cfg.Alpha)
	}

	model := SelectModel(fit, CoefficientOfVariation(w))
	if model == ModelExponentialSmoothing {
		return model, fit, smoothedLevel(w, e.cfg.Alpha)
	}
	return model, fit, 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
