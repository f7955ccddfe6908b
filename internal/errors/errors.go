// Package errors defines the error taxonomy for the forecasting engine.
package errors

import (
	"errors"
	"fmt"
)

// Base error kinds
var (
	// ErrInsufficientData indicates the sample window holds fewer points
	// than the engine's minimum. Waiting for more history is the only cure;
	// the engine never retries this.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateWindow indicates the fit is undefined for the window
	// (all timestamps identical, zero x-variance).
	ErrDegenerateWindow = errors.New("degenerate window")

	// ErrUnavailable indicates the upstream sample provider failed. It is
	// propagated verbatim, never masked or retried inside the engine.
	ErrUnavailable = errors.New("sample provider unavailable")
)

// Kind categorizes an engine error.
type Kind string

const (
	KindInsufficientData Kind = "insufficient_data"
	KindDegenerateWindow Kind = "degenerate_window"
	KindUnavailable      Kind = "unavailable"
)

// EngineError is a structured error for forecasting operations.
type EngineError struct {
	Kind     Kind
	Op       string // Operation that failed (e.g., "forecast", "predict_crossing")
	EntityID string
	Metric   string
	Err      error // Underlying error
}

func (e *EngineError) Error() string {
	if e.Metric != "" {
		return fmt.Sprintf("%s failed for %s/%s: %v", e.Op, e.EntityID, e.Metric, e.Err)
	}
	if e.EntityID != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.EntityID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is matching against the base kinds.
func (e *EngineError) Is(target error) bool {
	if target == nil {
		return false
	}

	switch target {
	case ErrInsufficientData:
		return e.Kind == KindInsufficientData
	case ErrDegenerateWindow:
		return e.Kind == KindDegenerateWindow
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	}

	return errors.Is(e.Err, target)
}

// NewEngineError creates a new EngineError.
func NewEngineError(kind Kind, op, entityID string, err error) *EngineError {
	return &EngineError{
		Kind:     kind,
		Op:       op,
		EntityID: entityID,
		Err:      err,
	}
}

// WithMetric adds metric information to the error.
func (e *EngineError) WithMetric(metric string) *EngineError {
	e.Metric = metric
	return e
}

// Helper constructors

// InsufficientData wraps a sample-count failure with context.
func InsufficientData(op, entityID, metric string, got, want int) error {
	err := fmt.Errorf("%w: got %d points, need at least %d", ErrInsufficientData, got, want)
	return NewEngineError(KindInsufficientData, op, entityID, err).WithMetric(metric)
}

// DegenerateWindow wraps a zero-variance fit failure with context.
func DegenerateWindow(op, entityID, metric string) error {
	return NewEngineError(KindDegenerateWindow, op, entityID, ErrDegenerateWindow).WithMetric(metric)
}

// WrapUnavailable wraps a provider failure with context. The provider's
// error stays intact in the chain; Is() matching on ErrUnavailable comes
// from the Kind.
func WrapUnavailable(op, entityID, metric string, err error) error {
	return NewEngineError(KindUnavailable, op, entityID, err).WithMetric(metric)
}

// KindOf extracts the Kind from an error chain, or empty when none applies.
func KindOf(err error) Kind {
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr.Kind
	}
	switch {
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrDegenerateWindow):
		return KindDegenerateWindow
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	}
	return ""
}
