// Package scheduler runs periodic exhaustion sweeps over monitored entities
// and dispatches resulting warnings.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/saashqdev/foresight/internal/errors"
	"github.com/saashqdev/foresight/internal/forecast"
)

// ExhaustionChecker is the engine surface the scheduler depends on.
type ExhaustionChecker interface {
	CheckExhaustion(ctx context.Context, entityID string) ([]forecast.ExhaustionWarning, error)
}

// WarningSink receives exhaustion warnings produced by a sweep.
type WarningSink interface {
	Notify(ctx context.Context, eventID string, warning forecast.ExhaustionWarning)
}

// LogSink writes warnings to the structured log. It is the default sink.
type LogSink struct{}

func (LogSink) Notify(_ context.Context, eventID string, w forecast.ExhaustionWarning) {
	log.Warn().
		Str("event", eventID).
		Str("entity", w.EntityID).
		Str("resource", w.ResourceName).
		Str("severity", string(w.Severity)).
		Float64("current", w.CurrentUsage).
		Float64("threshold", w.Threshold).
		Dur("timeUntil", w.TimeUntilExhaustion).
		Time("predicted", w.EstimatedExhaustion).
		Msg("Resource exhaustion predicted")
}

// Config tunes the scheduler.
type Config struct {
	Interval    time.Duration // sweep cadence
	Concurrency int           // max entities checked in parallel
}

// Scheduler sweeps entities on a fixed cadence.
type Scheduler struct {
	cfg      Config
	checker  ExhaustionChecker
	sink     WarningSink
	entities []string
}

// New creates a scheduler over the given entities. A nil sink defaults to
// LogSink.
func New(cfg Config, checker ExhaustionChecker, sink WarningSink, entities []string) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if sink == nil {
		sink = LogSink{}
	}
	return &Scheduler{
		cfg:      cfg,
		checker:  checker,
		sink:     sink,
		entities: entities,
	}
}

// Run sweeps at the configured cadence until the context is cancelled. The
// first sweep happens immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep checks every entity once, fanning out up to the configured
// concurrency. Per-entity failures are logged; the sweep itself always
// completes.
func (s *Scheduler) Sweep(ctx context.Context) {
	start := time.Now()

	g, sweepCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, entityID := range s.entities {
		g.Go(func() error {
			s.sweepEntity(sweepCtx, entityID)
			return nil
		})
	}
	g.Wait()

	log.Debug().
		Int("entities", len(s.entities)).
		Dur("duration", time.Since(start)).
		Msg("Exhaustion sweep completed")
}

func (s *Scheduler) sweepEntity(ctx context.Context, entityID string) {
	warnings, err := s.checker.CheckExhaustion(ctx, entityID)
	if err != nil {
		log.Error().
			Err(err).
			Str("entity", entityID).
			Str("kind", string(apperrors.KindOf(err))).
			Msg("Exhaustion check failed")
		return
	}

	for _, w := range warnings {
		s.sink.Notify(ctx, uuid.NewString(), w)
	}
}
