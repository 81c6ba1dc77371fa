package vcu

// FaultFilter debounces a raw fault flag with a saturating up/down counter.
// The counter increments while the raw flag is set and decrements toward
// zero while it is clear. At FilterMax the confirmed flag latches and the
// counter freezes; only Reset clears it.
type FaultFilter struct {
	name      string
	period    int // base ticks between counter samples
	phase     int
	count     int
	confirmed bool
	transient bool
}

// NewFaultFilter creates a filter sampling every periodTicks base ticks.
func NewFaultFilter(name string, periodTicks int) *FaultFilter {
	return &FaultFilter{name: name, period: periodTicks}
}

// Tick advances one base tick. The raw flag is latched immediately as the
// transient indication; the counter is stepped only on the sample cadence.
func (f *FaultFilter) Tick(raw bool) (transient, confirmed bool) {
	f.transient = raw
	f.phase++
	if f.phase >= f.period {
		f.phase = 0
		f.Observe(raw)
	}
	return f.transient, f.confirmed
}

// Observe applies one counter sample directly, bypassing the tick cadence.
// Used by owners that schedule their own sampling (wet-output comparators).
func (f *FaultFilter) Observe(raw bool) {
	if f.confirmed {
		// Latched: counter frozen until Reset.
		return
	}
	if raw {
		if f.count < FilterMax {
			f.count++
			if f.count == FilterMax {
				f.confirmed = true
			}
		}
		return
	}
	if f.count > 0 {
		f.count--
	}
}

// Name returns the monitored channel name.
func (f *FaultFilter) Name() string { return f.name }

// Count returns the current counter value.
func (f *FaultFilter) Count() int { return f.count }

// Confirmed reports whether the counter has saturated.
func (f *FaultFilter) Confirmed() bool { return f.confirmed }

// Transient reports the raw flag from the last Tick.
func (f *FaultFilter) Transient() bool { return f.transient }

// Status returns a read-only view of the filter.
func (f *FaultFilter) Status() FilterStatus {
	return FilterStatus{Count: f.count, Confirmed: f.confirmed}
}

// Reset clears the counter, the confirmed latch and the sample phase.
func (f *FaultFilter) Reset() {
	f.phase = 0
	f.count = 0
	f.confirmed = false
	f.transient = false
}
