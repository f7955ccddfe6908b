package forecast

import (
	"math"
	"time"
)

// DefaultConfidenceLevel is the confidence level attached to linear-trend
// prediction intervals. The interval multiplier is the matching normal
// quantile.
const (
	DefaultConfidenceLevel = 0.95
	intervalZScore         = 1.96
)

// forecastLinear projects the fitted line to a horizon past the window end
// and attaches a symmetric prediction interval of
// 1.96 * sqrt(rms * (1 + 1/n)). Windows with fewer than 3 samples get a ±0
// interval; callers can inspect FitResult.SampleCount to detect that case.
func forecastLinear(fit FitResult, windowDuration, horizon time.Duration) (value, lower, upper float64) {
	x := windowDuration.Seconds() + horizon.Seconds()
	value = fit.Intercept + fit.Slope*x

	margin := 0.0
	if fit.SampleCount >= 3 {
		n := float64(fit.SampleCount)
		margin = intervalZScore * math.Sqrt(fit.residualMeanSquare*(1+1/n))
	}

	return value, value - margin, value + margin
}
