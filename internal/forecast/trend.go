package forecast

import (
	"math"

	apperrors "github.com/saashqdev/foresight/internal/errors"
)

// MinimumSamples is the fewest points a window may hold before the engine
// will forecast from it.
const MinimumSamples = 20

// FitResult is an ordinary least-squares fit over a sample window. Slope is
// in value units per second; Correlation is the Pearson r between elapsed
// time and value (its sign matches the slope, zero for constant series).
type FitResult struct {
	Slope       float64
	Intercept   float64
	Correlation float64
	SampleCount int

	// residualMeanSquare is the mean squared residual of the fit, kept for
	// the prediction interval.
	residualMeanSquare float64
}

// FitTrend computes the least-squares fit of value against elapsed seconds
// since window start. It requires at least 2 samples and fails with
// ErrDegenerateWindow when all timestamps are identical.
func FitTrend(w Window) (FitResult, error) {
	n := float64(w.Len())
	if w.Len() < 2 {
		return FitResult{}, apperrors.ErrInsufficientData
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for _, s := range w.Samples() {
		x := w.elapsed(s)
		y := s.Value
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
		sumY2 += y * y
	}

	denom := n*sumX2 - sumX*sumX
	if denom <= 0 {
		// Zero variance in x: every sample shares one timestamp.
		return FitResult{}, apperrors.ErrDegenerateWindow
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	varY := n*sumY2 - sumY*sumY
	r := 0.0
	if varY > 0 {
		r = (n*sumXY - sumX*sumY) / math.Sqrt(denom*varY)
	}

	var ssRes float64
	for _, s := range w.Samples() {
		resid := s.Value - (intercept + slope*w.elapsed(s))
		ssRes += resid * resid
	}

	return FitResult{
		Slope:              slope,
		Intercept:          intercept,
		Correlation:        r,
		SampleCount:        w.Len(),
		residualMeanSquare: ssRes / n,
	}, nil
}

// Direction derives the trend direction from the slope sign.
func (f FitResult) Direction() TrendDirection {
	switch {
	case f.Slope > 0:
		return TrendIncreasing
	case f.Slope < 0:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// CoefficientOfVariation returns stddev(values)/mean(values) for the window.
// A zero mean yields +Inf, treated by the selector as highly volatile.
func CoefficientOfVariation(w Window) float64 {
	n := float64(w.Len())
	if w.Len() == 0 {
		return 0
	}

	var sum float64
	for _, s := range w.Samples() {
		sum += s.Value
	}
	mean := sum / n
	if mean == 0 {
		return math.Inf(1)
	}

	var sumSquares float64
	for _, s := range w.Samples() {
		diff := s.Value - mean
		sumSquares += diff * diff
	}
	stdDev := math.Sqrt(sumSquares / n)

	return math.Abs(stdDev / mean)
}
