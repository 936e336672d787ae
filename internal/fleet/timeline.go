package fleet

// DefaultWindow is the number of samples retained per entity when the
// config does not say otherwise — enough for the console's trend charts.
const DefaultWindow = 50

// Timeline is the bounded, append-only sample history of one monitored
// entity. The newest sample is always the last element; once the window
// is full the oldest sample is evicted first.
//
// A Timeline is not safe for concurrent use on its own; the Store's
// single-writer discipline covers it.
type Timeline struct {
	window  int
	samples []Sample
}

// NewTimeline creates an empty timeline holding at most window samples.
// A window < 1 falls back to DefaultWindow.
func NewTimeline(window int) *Timeline {
	if window < 1 {
		window = DefaultWindow
	}
	return &Timeline{window: window, samples: make([]Sample, 0, window)}
}

// Append inserts s as the new latest sample, evicting from the front
// when the window is exceeded.
func (t *Timeline) Append(s Sample) {
	t.samples = append(t.samples, s.clone())
	if len(t.samples) > t.window {
		over := len(t.samples) - t.window
		t.samples = append(t.samples[:0], t.samples[over:]...)
	}
}

// Latest returns the newest sample, or false before the first append.
func (t *Timeline) Latest() (Sample, bool) {
	if len(t.samples) == 0 {
		return Sample{}, false
	}
	return t.samples[len(t.samples)-1], true
}

// History returns a copy of all retained samples, oldest first.
func (t *Timeline) History() []Sample {
	out := make([]Sample, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.clone()
	}
	return out
}

// Len returns the number of retained samples.
func (t *Timeline) Len() int { return len(t.samples) }
