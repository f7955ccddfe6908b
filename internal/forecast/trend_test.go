package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	apperrors "github.com/saashqdev/foresight/internal/errors"
)

func buildLinearSamples(start time.Time, points int, step time.Duration, startValue, stepValue float64) []Sample {
	samples := make([]Sample, points)
	for i := 0; i < points; i++ {
		samples[i] = Sample{
			Timestamp: start.Add(time.Duration(i) * step),
			Value:     startValue + float64(i)*stepValue,
		}
	}
	return samples
}

func TestFitTrend_PerfectLine(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// value(t) = 2t + 5 with t in seconds
	w := NewWindow(buildLinearSamples(start, 30, time.Second, 5, 2))

	fit, err := FitTrend(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(fit.Slope-2) > 1e-9 {
		t.Errorf("expected slope 2, got %g", fit.Slope)
	}
	if math.Abs(fit.Intercept-5) > 1e-6 {
		t.Errorf("expected intercept 5, got %g", fit.Intercept)
	}
	if math.Abs(fit.Correlation-1) > 1e-9 {
		t.Errorf("expected r ~ 1.0, got %g", fit.Correlation)
	}
	if fit.SampleCount != 30 {
		t.Errorf("expected sample count 30, got %d", fit.SampleCount)
	}
}

func TestFitTrend_Idempotent(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Timestamp: start, Value: 10.7},
		{Timestamp: start.Add(40 * time.Second), Value: 12.1},
		{Timestamp: start.Add(75 * time.Second), Value: 11.3},
		{Timestamp: start.Add(130 * time.Second), Value: 14.9},
		{Timestamp: start.Add(170 * time.Second), Value: 13.2},
	}
	w := NewWindow(samples)

	first, err := FitTrend(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := FitTrend(w)
		if err != nil {
			t.Fatalf("unexpected error on repeat %d: %v", i, err)
		}
		if again.Slope != first.Slope || again.Intercept != first.Intercept || again.Correlation != first.Correlation {
			t.Fatalf("fit not bit-identical on repeat %d: %+v vs %+v", i, again, first)
		}
	}
}

func TestFitTrend_ConstantSeries(t *testing.T) {
	start := time.Now()
	w := NewWindow(buildLinearSamples(start, 25, time.Minute, 42, 0))

	fit, err := FitTrend(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit.Slope != 0 {
		t.Errorf("expected zero slope, got %g", fit.Slope)
	}
	if fit.Correlation != 0 {
		t.Errorf("expected zero correlation for constant series, got %g", fit.Correlation)
	}
}

func TestFitTrend_DegenerateWindow(t *testing.T) {
	ts := time.Now()
	samples := []Sample{
		{Timestamp: ts, Value: 10},
		{Timestamp: ts, Value: 20},
		{Timestamp: ts, Value: 30},
	}
	// NewWindow dedupes identical timestamps, so feed the raw window shape
	// through a two-sample variant that survives deduplication.
	w := NewWindow(samples)
	if w.Len() != 1 {
		t.Fatalf("expected dedup to collapse identical timestamps, got %d", w.Len())
	}

	if _, err := FitTrend(w); !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected insufficient data for single-sample window, got %v", err)
	}
}

func TestFitTrend_TooFewSamples(t *testing.T) {
	w := NewWindow([]Sample{{Timestamp: time.Now(), Value: 1}})
	if _, err := FitTrend(w); !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected error for single sample, got %v", err)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	start := time.Now()

	flat := NewWindow(buildLinearSamples(start, 10, time.Second, 50, 0))
	if cv := CoefficientOfVariation(flat); cv != 0 {
		t.Errorf("expected zero CV for constant series, got %g", cv)
	}

	noisy := NewWindow([]Sample{
		{Timestamp: start, Value: 10},
		{Timestamp: start.Add(time.Second), Value: 100},
		{Timestamp: start.Add(2 * time.Second), Value: 10},
		{Timestamp: start.Add(3 * time.Second), Value: 100},
	})
	if cv := CoefficientOfVariation(noisy); cv <= 0.3 {
		t.Errorf("expected high CV for noisy series, got %g", cv)
	}
}

func TestCoefficientOfVariation_ZeroMean(t *testing.T) {
	start := time.Now()
	w := NewWindow([]Sample{
		{Timestamp: start, Value: -5},
		{Timestamp: start.Add(time.Second), Value: 5},
	})

	if cv := CoefficientOfVariation(w); !math.IsInf(cv, 1) {
		t.Errorf("expected +Inf CV for zero mean, got %g", cv)
	}
}

func TestWindow_SortsAndDedupes(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	w := NewWindow([]Sample{
		{Timestamp: base.Add(2 * time.Minute), Value: 3},
		{Timestamp: base, Value: 1},
		{Timestamp: base.Add(time.Minute), Value: 2},
		{Timestamp: base.Add(time.Minute), Value: 2.5}, // duplicate, last wins
	})

	if w.Len() != 3 {
		t.Fatalf("expected 3 samples after dedup, got %d", w.Len())
	}
	if !w.Start().Equal(base) {
		t.Errorf("expected start %v, got %v", base, w.Start())
	}
	if w.Samples()[1].Value != 2.5 {
		t.Errorf("expected duplicate timestamp to keep last value, got %g", w.Samples()[1].Value)
	}
	if w.Duration() != 2*time.Minute {
		t.Errorf("expected 2m duration, got %v", w.Duration())
	}
	if w.Last() != 3 {
		t.Errorf("expected last value 3, got %g", w.Last())
	}
}

func TestFitResult_Direction(t *testing.T) {
	cases := []struct {
		slope    float64
		expected TrendDirection
	}{
		{1.5, TrendIncreasing},
		{-0.2, TrendDecreasing},
		{0, TrendStable},
	}
	for _, tc := range cases {
		fit := FitResult{Slope: tc.slope}
		if got := fit.Direction(); got != tc.expected {
			t.Errorf("slope %g: expected %s, got %s", tc.slope, tc.expected, got)
		}
	}
}
