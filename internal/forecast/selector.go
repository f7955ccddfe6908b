package forecast

import "math"

// Selection thresholds. Trend strength is checked before volatility so a
// genuinely strong trend is never discarded merely because absolute variance
// is also high.
const (
	strongTrendCorrelation = 0.7
	volatileCV             = 0.3
)

// SelectModel chooses the forecasting model for a window given its linear
// fit and coefficient of variation. First match wins:
//
//  1. |r| > 0.7        -> LinearTrend
//  2. CV > 0.3         -> ExponentialSmoothing
//  3. otherwise        -> LinearTrend
func SelectModel(fit FitResult, cv float64) ModelType {
	if math.Abs(fit.Correlation) > strongTrendCorrelation {
		return ModelLinearTrend
	}
	if cv > volatileCV {
		return ModelExponentialSmoothing
	}
	return ModelLinearTrend
}
