package vcu

// WetOutput supervises one digital output with physical feedback wiring.
// After a new level is commanded, comparison pauses for SettleTicks; the
// first sample lands when the settle delay expires and repeats on the
// CompareTicks cadence, feeding mismatches into the fault filter. A confirmed fault forces the output to the de-energized
// safe state until Reset.
type WetOutput struct {
	name       string
	commanded  bool
	settle     int
	phase      int
	filter     *FaultFilter
	forcedSafe bool
	mismatch   bool
}

// NewWetOutput creates a supervised output, initially de-energized.
func NewWetOutput(name string) *WetOutput {
	return &WetOutput{
		name:   name,
		filter: NewFaultFilter(name, CompareTicks),
	}
}

// Set commands a new level. A level change restarts the settle delay so the
// physical output has time to follow before the comparator looks at it.
func (o *WetOutput) Set(level bool) {
	if o.forcedSafe {
		return
	}
	if level != o.commanded {
		o.commanded = level
		o.settle = SettleTicks
		o.phase = 0
	}
}

// Tick advances one base tick with the current feedback level.
func (o *WetOutput) Tick(feedback bool) {
	if o.settle > 0 {
		o.settle--
		if o.settle > 0 {
			return
		}
		// First comparison lands on the tick the settle delay expires;
		// the compare cadence runs from there.
	} else {
		o.phase++
		if o.phase < CompareTicks {
			return
		}
	}
	o.phase = 0

	o.mismatch = feedback != o.Level()
	o.filter.Observe(o.mismatch)
	if o.filter.Confirmed() && !o.forcedSafe {
		o.forcedSafe = true
		o.commanded = false
	}
}

// Level returns the effective driven level (safe-state forcing applied).
func (o *WetOutput) Level() bool { return o.commanded && !o.forcedSafe }

// Commanded returns the last commanded level before safe-state forcing.
func (o *WetOutput) Commanded() bool { return o.commanded }

// Mismatch reports the result of the most recent comparison sample.
func (o *WetOutput) Mismatch() bool { return o.mismatch }

// Confirmed reports whether the feedback fault has been confirmed.
func (o *WetOutput) Confirmed() bool { return o.filter.Confirmed() }

// Status returns the fault filter view.
func (o *WetOutput) Status() FilterStatus { return o.filter.Status() }

// Name returns the output name.
func (o *WetOutput) Name() string { return o.name }

// Reset clears the filter, the safe-state latch and de-energizes the output.
func (o *WetOutput) Reset() {
	o.commanded = false
	o.settle = 0
	o.phase = 0
	o.forcedSafe = false
	o.mismatch = false
	o.filter.Reset()
}

// debouncer qualifies a raw discrete input: the stable level follows the
// raw level only after it has held for the configured number of ticks.
type debouncer struct {
	period int
	stable bool
	count  int
}

func newDebouncer(periodTicks int) *debouncer {
	return &debouncer{period: periodTicks}
}

// tick advances one base tick and returns true on a qualified rising edge.
func (d *debouncer) tick(raw bool) (rose bool) {
	if raw == d.stable {
		d.count = 0
		return false
	}
	d.count++
	if d.count < d.period {
		return false
	}
	d.stable = raw
	d.count = 0
	return d.stable
}

func (d *debouncer) level() bool { return d.stable }

func (d *debouncer) reset() {
	d.stable = false
	d.count = 0
}

// SelfTest sequences the periodic input self-test: the two test channels
// are exercised alternately every SelfTestInterleaveTicks. Within a
// sequence the HIGH test input pulses first, the LOW test input follows
// 1ms later, and HIGH de-asserts exactly one base tick (500µs) before LOW.
type SelfTest struct {
	phase   int
	channel int
}

// Sequence offsets in base ticks from the start of a channel's slot.
const (
	stHighOn  = 0
	stLowOn   = 2 // 1ms after HIGH asserts
	stHighOff = 6
	stLowOff  = 7 // 500µs after HIGH de-asserts
)

// NewSelfTest creates the sequencer at the start of channel 0's slot.
func NewSelfTest() *SelfTest {
	return &SelfTest{}
}

// Tick advances one base tick and returns the test line levels and the
// channel they apply to.
func (s *SelfTest) Tick() (channel int, testHigh, testLow bool) {
	channel = s.channel
	testHigh = s.phase >= stHighOn && s.phase < stHighOff
	testLow = s.phase >= stLowOn && s.phase < stLowOff

	s.phase++
	if s.phase >= SelfTestInterleaveTicks {
		s.phase = 0
		s.channel = 1 - s.channel
	}
	return channel, testHigh, testLow
}

// Reset returns the sequencer to the start of channel 0's slot.
func (s *SelfTest) Reset() {
	s.phase = 0
	s.channel = 0
}
