package vcu

// ModeConditions are the latched condition inputs the arbiter evaluates.
// All flags are already debounced/confirmed by the owning layer.
type ModeConditions struct {
	// MajorFault is a confirmed penalty-brake feedback fault. Once seen
	// it latches inside the arbiter until Reset.
	MajorFault bool

	Driverless bool // suppression request
	CBTC       bool // depression request (hcs/CBTC supervision active)

	ZeroSpeed bool
	CabActive bool

	// VigilanceAck is the debounced level of the vigilance-acknowledge
	// input, used for the Test-mode entry hold.
	VigilanceAck bool

	// CycleComplete pulses when the vigilance FSM has traversed a full
	// escalation cycle back to NoWarning. Exits Test mode.
	CycleComplete bool
}

// ModeArbiter selects the operating mode from condition inputs, evaluated
// every tick as a priority cascade:
//
//	MajorFault > Test > Suppressed > Depressed > Normal
//
// Test mode is entered on a compound condition (standstill, cab active,
// vigilance-acknowledge held for TestEntryHoldTicks while suppressed) and
// exited when the vigilance cycle completes, a major fault occurs, or any
// entry sub-condition drops.
type ModeArbiter struct {
	mode         OperatingMode
	majorLatched bool
	ackHold      int
}

// NewModeArbiter creates an arbiter in Normal mode.
func NewModeArbiter() *ModeArbiter {
	return &ModeArbiter{mode: ModeNormal}
}

// Tick evaluates the cascade and returns the selected mode.
func (a *ModeArbiter) Tick(c ModeConditions) OperatingMode {
	if c.MajorFault {
		a.majorLatched = true
	}
	if a.majorLatched {
		a.mode = ModeMajorFault
		a.ackHold = 0
		return a.mode
	}

	if a.mode == ModeTest {
		if c.CycleComplete || !c.ZeroSpeed || !c.CabActive || !c.Driverless {
			a.mode = a.cascade(c)
			a.ackHold = 0
		}
		return a.mode
	}

	// Test entry hold: counted only while the full compound condition is
	// satisfied from Suppressed mode.
	if a.mode == ModeSuppressed && c.ZeroSpeed && c.CabActive && c.VigilanceAck {
		a.ackHold++
		if a.ackHold >= TestEntryHoldTicks {
			a.mode = ModeTest
			a.ackHold = 0
			return a.mode
		}
	} else {
		a.ackHold = 0
	}

	a.mode = a.cascade(c)
	return a.mode
}

func (a *ModeArbiter) cascade(c ModeConditions) OperatingMode {
	switch {
	case c.Driverless:
		return ModeSuppressed
	case c.CBTC:
		return ModeDepressed
	}
	return ModeNormal
}

// Mode returns the mode selected by the last Tick.
func (a *ModeArbiter) Mode() OperatingMode { return a.mode }

// MajorLatched reports whether a major fault has been latched.
func (a *ModeArbiter) MajorLatched() bool { return a.majorLatched }

// Reset returns the arbiter to Normal and clears the major-fault latch.
// Corresponds to a device reset/power cycle.
func (a *ModeArbiter) Reset() {
	a.mode = ModeNormal
	a.majorLatched = false
	a.ackHold = 0
}
