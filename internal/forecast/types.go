package forecast

import "time"

// ModelType identifies which forecasting model produced a prediction. The
// two models are exhaustive and fixed; dispatch is always an explicit switch.
type ModelType string

const (
	ModelLinearTrend          ModelType = "linear_trend"
	ModelExponentialSmoothing ModelType = "exponential_smoothing"
)

// TrendDirection indicates the direction implied by a linear fit.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// ThresholdType distinguishes thresholds approached from below (Upper) from
// thresholds approached from above (Lower).
type ThresholdType string

const (
	ThresholdUpper ThresholdType = "upper"
	ThresholdLower ThresholdType = "lower"
)

// Severity tiers for exhaustion warnings.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Prediction is a forecast value for one metric at one horizon.
type Prediction struct {
	EntityID        string        `json:"entity_id"`
	Metric          string        `json:"metric"`
	PredictedValue  float64       `json:"predicted_value"`
	ConfidenceLower float64       `json:"confidence_lower"`
	ConfidenceUpper float64       `json:"confidence_upper"`
	Horizon         time.Duration `json:"horizon"`
	Model           ModelType     `json:"model"`
	ConfidenceLevel float64       `json:"confidence_level"`
	ComputedAt      time.Time     `json:"computed_at"`
}

// ThresholdCrossing is the predicted moment a metric crosses a threshold.
// Absent (nil) when the trend direction disagrees with the threshold type,
// the fit is below the confidence gate, or the crossing falls outside the
// look-ahead window.
type ThresholdCrossing struct {
	EntityID          string         `json:"entity_id"`
	Metric            string         `json:"metric"`
	ThresholdValue    float64        `json:"threshold_value"`
	ThresholdType     ThresholdType  `json:"threshold_type"`
	EstimatedCrossing time.Time      `json:"estimated_crossing_time"`
	CurrentValue      float64        `json:"current_value"`
	Trend             TrendDirection `json:"trend"`
	GrowthRatePerHour float64        `json:"growth_rate_per_hour"`
	Confidence        float64        `json:"confidence"`
}

// ExhaustionWarning flags a critical resource heading toward its threshold.
type ExhaustionWarning struct {
	EntityID            string        `json:"entity_id"`
	ResourceName        string        `json:"resource_name"`
	CurrentUsage        float64       `json:"current_usage"`
	Threshold           float64       `json:"threshold"`
	TimeUntilExhaustion time.Duration `json:"time_until_exhaustion"`
	EstimatedExhaustion time.Time     `json:"estimated_exhaustion_time"`
	GrowthRatePerHour   float64       `json:"growth_rate_per_hour"`
	Confidence          float64       `json:"confidence"`
	Severity            Severity      `json:"severity"`
}
