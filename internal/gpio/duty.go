package gpio

// dutyMeter estimates a PWM duty cycle from level samples over a sliding
// window.
type dutyMeter struct {
	samples []bool
	index   int
	filled  int
	high    int
}

func newDutyMeter(window int) *dutyMeter {
	return &dutyMeter{samples: make([]bool, window)}
}

// sample records one level and returns the current estimate in percent.
func (m *dutyMeter) sample(level bool) float64 {
	if m.filled == len(m.samples) {
		if m.samples[m.index] {
			m.high--
		}
	} else {
		m.filled++
	}
	m.samples[m.index] = level
	if level {
		m.high++
	}
	m.index = (m.index + 1) % len(m.samples)

	return 100 * float64(m.high) / float64(m.filled)
}
