package forecast

// DefaultAlpha is the default exponential-smoothing factor.
const DefaultAlpha = 0.3

// smoothedLevel runs simple exponential smoothing over the ordered window
// and returns the final level S_n. Implemented as a fold, not recursion, so
// long windows cannot grow the stack. The projection is flat: smoothing here
// is a noise-damping last good estimate, not a trend model, so the horizon
// never changes the value.
func smoothedLevel(w Window, alpha float64) float64 {
	samples := w.Samples()
	if len(samples) == 0 {
		return 0
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}

	level := samples[0].Value
	for _, s := range samples[1:] {
		level = alpha*s.Value + (1-alpha)*level
	}
	return level
}
