package forecast

import "time"

// ResourceThreshold is one entry in the critical-resource catalogue.
type ResourceThreshold struct {
	Metric   string
	Warning  float64
	Critical float64
}

// DefaultCatalogue lists the resources the exhaustion evaluator sweeps and
// their default thresholds (percent utilisation).
func DefaultCatalogue() []ResourceThreshold {
	return []ResourceThreshold{
		{Metric: "disk_usage", Warning: 80, Critical: 95},
		{Metric: "memory_usage", Warning: 85, Critical: 95},
		{Metric: "cpu_usage", Warning: 90, Critical: 98},
	}
}

// Severity breakpoints for time-until-exhaustion. The mapping is a monotone
// step function; bands are never interpolated. The exact 1h boundary is
// Critical.
const (
	criticalWithin = 1 * time.Hour
	errorWithin    = 4 * time.Hour
	warningWithin  = 12 * time.Hour
)

func severityFor(timeUntil time.Duration) Severity {
	switch {
	case timeUntil <= criticalWithin:
		return SeverityCritical
	case timeUntil < errorWithin:
		return SeverityError
	case timeUntil < warningWithin:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// evaluateExhaustion runs the crossing solver against a resource's critical
// threshold and maps the crossing into an exhaustion warning. Pure: no
// persistence, no alert emission.
func evaluateExhaustion(entityID string, res ResourceThreshold, fit FitResult, w Window, lookahead time.Duration, gate float64, now time.Time) *ExhaustionWarning {
	crossing := SolveCrossing(entityID, res.Metric, fit, w, CrossingParams{
		Threshold:      res.Critical,
		Type:           ThresholdUpper,
		ConfidenceGate: gate,
		MaxLookahead:   lookahead,
	})
	if crossing == nil {
		return nil
	}

	timeUntil := crossing.EstimatedCrossing.Sub(now)
	if timeUntil < 0 {
		timeUntil = 0
	}

	return &ExhaustionWarning{
		EntityID:            entityID,
		ResourceName:        res.Metric,
		CurrentUsage:        crossing.CurrentValue,
		Threshold:           res.Critical,
		TimeUntilExhaustion: timeUntil,
		EstimatedExhaustion: crossing.EstimatedCrossing,
		GrowthRatePerHour:   crossing.GrowthRatePerHour,
		Confidence:          crossing.Confidence,
		Severity:            severityFor(timeUntil),
	}
}
