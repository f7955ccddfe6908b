package forecast

import (
	"sort"
	"time"
)

// Sample is a single metric observation. Samples are never mutated after
// construction.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Window is an ordered view of recent samples for one (entity, metric) pair,
// sorted ascending by timestamp with duplicate timestamps removed. Windows
// are built fresh per engine invocation and discarded afterwards.
type Window struct {
	samples []Sample
}

// NewWindow builds a window from raw samples. The input slice is copied,
// sorted ascending, and deduplicated on timestamp (last write wins).
func NewWindow(samples []Sample) Window {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	deduped := sorted[:0]
	for _, s := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Timestamp.Equal(s.Timestamp) {
			deduped[n-1] = s
			continue
		}
		deduped = append(deduped, s)
	}

	return Window{samples: deduped}
}

// Len returns the number of samples in the window.
func (w Window) Len() int {
	return len(w.samples)
}

// Samples returns the ordered samples. Callers must not mutate the result.
func (w Window) Samples() []Sample {
	return w.samples
}

// Start returns the timestamp of the earliest sample.
func (w Window) Start() time.Time {
	if len(w.samples) == 0 {
		return time.Time{}
	}
	return w.samples[0].Timestamp
}

// End returns the timestamp of the latest sample.
func (w Window) End() time.Time {
	if len(w.samples) == 0 {
		return time.Time{}
	}
	return w.samples[len(w.samples)-1].Timestamp
}

// Duration returns the elapsed time covered by the window.
func (w Window) Duration() time.Duration {
	if len(w.samples) < 2 {
		return 0
	}
	return w.End().Sub(w.Start())
}

// Last returns the most recent value, or 0 for an empty window.
func (w Window) Last() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	return w.samples[len(w.samples)-1].Value
}

// elapsed returns a sample's x-coordinate: seconds since window start.
func (w Window) elapsed(s Sample) float64 {
	return s.Timestamp.Sub(w.Start()).Seconds()
}
