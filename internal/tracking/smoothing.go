package tracking

import "sort"

// AltitudeSmoother filters noisy altitude readings. Implementations are used
// by a single session and need not be safe for concurrent use.
type AltitudeSmoother interface {
	Smooth(raw float64) float64
}

type passthrough struct{}

func (passthrough) Smooth(raw float64) float64 { return raw }

// MedianSmoother returns the median of the last window readings, which
// suppresses single-sample barometric spikes.
type MedianSmoother struct {
	window  int
	values  []float64
	next    int
	scratch []float64
}

// NewMedianSmoother returns a trailing median filter. Even windows are
// widened by one; windows below 3 pass readings through unchanged.
func NewMedianSmoother(window int) AltitudeSmoother {
	if window < 3 {
		return passthrough{}
	}
	if window%2 == 0 {
		window++
	}
	return &MedianSmoother{
		window:  window,
		values:  make([]float64, 0, window),
		scratch: make([]float64, 0, window),
	}
}

func (m *MedianSmoother) Smooth(raw float64) float64 {
	if len(m.values) < m.window {
		m.values = append(m.values, raw)
	} else {
		m.values[m.next] = raw
		m.next = (m.next + 1) % m.window
	}

	m.scratch = append(m.scratch[:0], m.values...)
	sort.Float64s(m.scratch)
	n := len(m.scratch)
	if n%2 == 0 {
		return (m.scratch[n/2-1] + m.scratch[n/2]) / 2
	}
	return m.scratch[n/2]
}
