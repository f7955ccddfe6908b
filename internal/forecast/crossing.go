package forecast

import (
	"math"
	"time"
)

// Crossing solver defaults.
const (
	// DefaultCrossingGate is the minimum |r| below which a trend is too
	// unreliable to extrapolate a crossing from.
	DefaultCrossingGate = 0.5

	// DefaultMaxLookahead bounds how far past "now" a crossing estimate may
	// fall before it is discarded as false-confidence long-range
	// extrapolation.
	DefaultMaxLookahead = 6 * time.Hour
)

// CrossingParams configures a threshold-crossing solve.
type CrossingParams struct {
	Threshold      float64
	Type           ThresholdType
	ConfidenceGate float64       // minimum |r|; DefaultCrossingGate when <= 0
	MaxLookahead   time.Duration // DefaultMaxLookahead when <= 0
}

// SolveCrossing inverts a linear fit to find when the metric reaches the
// threshold. A nil result means "no crossing predicted", which is distinct
// from an error: the trend points away from the threshold, the fit is below
// the confidence gate, or the crossing time is in the past or beyond the
// look-ahead limit.
//
// Both the direction gate and the confidence gate must hold: a strong trend
// in the wrong direction and a weak trend in the right direction both
// produce misleading crossing estimates.
func SolveCrossing(entityID, metric string, fit FitResult, w Window, p CrossingParams) *ThresholdCrossing {
	gate := p.ConfidenceGate
	if gate <= 0 {
		gate = DefaultCrossingGate
	}
	lookahead := p.MaxLookahead
	if lookahead <= 0 {
		lookahead = DefaultMaxLookahead
	}

	direction := fit.Direction()
	switch p.Type {
	case ThresholdUpper:
		if direction != TrendIncreasing {
			return nil
		}
	case ThresholdLower:
		if direction != TrendDecreasing {
			return nil
		}
	default:
		return nil
	}

	if math.Abs(fit.Correlation) < gate {
		return nil
	}

	// Seconds from window start at which the fitted line meets the
	// threshold. Slope is non-zero here: the direction gate already
	// rejected stable trends.
	tCross := (p.Threshold - fit.Intercept) / fit.Slope
	if math.IsNaN(tCross) || math.IsInf(tCross, 0) {
		return nil
	}

	elapsedEnd := w.Duration().Seconds()
	if tCross <= elapsedEnd {
		return nil
	}
	if tCross > elapsedEnd+lookahead.Seconds() {
		return nil
	}

	return &ThresholdCrossing{
		EntityID:          entityID,
		Metric:            metric,
		ThresholdValue:    p.Threshold,
		ThresholdType:     p.Type,
		EstimatedCrossing: w.Start().Add(time.Duration(tCross * float64(time.Second))),
		CurrentValue:      w.Last(),
		Trend:             direction,
		GrowthRatePerHour: fit.Slope * 3600,
		Confidence:        math.Abs(fit.Correlation),
	}
}
