package navigation

// DefaultWindow is the MovingAverage capacity used when none is given.
const DefaultWindow = 5

// MovingAverage is a fixed-capacity ring buffer of recent readings.
// It is not safe for concurrent use; one owner drives it.
type MovingAverage struct {
	values []float64
	next   int
	count  int
}

// NewMovingAverage returns an empty average over the last size readings.
func NewMovingAverage(size int) *MovingAverage {
	if size <= 0 {
		size = DefaultWindow
	}
	return &MovingAverage{values: make([]float64, size)}
}

// Add records v, evicting the oldest reading once full, and returns the
// new mean.
func (m *MovingAverage) Add(v float64) float64 {
	m.values[m.next] = v
	m.next = (m.next + 1) % len(m.values)
	if m.count < len(m.values) {
		m.count++
	}
	return m.Average()
}

// Average returns the mean of the buffered readings, or 0 when empty.
func (m *MovingAverage) Average() float64 {
	if m.count == 0 {
		return 0
	}
	// Slots [0, count) are filled: the buffer only wraps once full.
	var sum float64
	for _, v := range m.values[:m.count] {
		sum += v
	}
	return sum / float64(m.count)
}

// Reset drops all readings.
func (m *MovingAverage) Reset() {
	clear(m.values)
	m.next, m.count = 0, 0
}

// Len is the number of buffered readings.
func (m *MovingAverage) Len() int { return m.count }

// Cap is the window size.
func (m *MovingAverage) Cap() int { return len(m.values) }
