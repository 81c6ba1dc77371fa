// Package vcu implements the control core of a railway Vigilance Control Unit
// as a deterministic discrete-time model. The package has NO external
// dependencies (no GPIO, MQTT, OS, or wall clock). The caller advances the
// model one base tick at a time; one tick represents 500µs of simulated time.
package vcu

// Base tick is 500µs. All periods below are expressed in base ticks.
const (
	TicksPerMillisecond = 2

	// CompareTicks is the comparator sample cadence for wet outputs (250ms).
	CompareTicks = 250 * TicksPerMillisecond

	// SlowFilterTicks is the sample cadence for power-supply and analog
	// speed fault filters (500ms).
	SlowFilterTicks = 500 * TicksPerMillisecond

	// SettleTicks is the delay after commanding a wet output before
	// feedback comparison resumes (128ms).
	SettleTicks = 128 * TicksPerMillisecond

	// DebounceTicks is the debounce applied to discrete TLA inputs (157ms).
	DebounceTicks = 157 * TicksPerMillisecond

	// TestEntryHoldTicks is how long the vigilance-acknowledge input must
	// be held, with the other entry conditions true, to enter Test mode (3s).
	TestEntryHoldTicks = 3000 * TicksPerMillisecond

	// TimerDefault is the vigilance countdown reload value (45s nominal).
	TimerDefault = 89999

	// WarningReload is the default sub-period reload for the warning
	// escalation states (5s nominal).
	WarningReload = 9999

	// FilterMax is the saturation value of every fault filter counter.
	FilterMax = 40

	// SelfTestInterleaveTicks is the per-channel self-test cadence (500ms).
	SelfTestInterleaveTicks = 500 * TicksPerMillisecond
)

// OperatingMode is the arbitrated operating mode. Exactly one is active.
type OperatingMode int

const (
	ModeNormal OperatingMode = iota
	ModeDepressed
	ModeSuppressed
	ModeTest
	ModeMajorFault
)

func (m OperatingMode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeDepressed:
		return "DEPRESSED"
	case ModeSuppressed:
		return "SUPPRESSED"
	case ModeTest:
		return "TEST"
	case ModeMajorFault:
		return "MAJOR_FAULT"
	}
	return "UNKNOWN"
}

// WarningState is the vigilance escalation sub-state.
type WarningState int

const (
	NoWarning WarningState = iota
	FirstWarning
	SecondWarning
)

func (w WarningState) String() string {
	switch w {
	case NoWarning:
		return "NO_WARNING"
	case FirstWarning:
		return "FIRST_WARNING"
	case SecondWarning:
		return "SECOND_WARNING"
	}
	return "UNKNOWN"
}

// PwmBand is a discrete operating-demand band decoded from a Master
// Controller PWM duty cycle. BandNone covers the continuously-variable
// demand regions between discrete bands and the ±0.3pp tolerance dead
// zones at band boundaries.
type PwmBand int

const (
	BandNone PwmBand = iota
	BandInvalid
	BandEmergencyBrake
	BandMaximumBrake
	BandMinimumBrake
	BandOffCoast
	BandMinimumPower
	BandMaximumPower
	BandInvalidHigh
)

func (b PwmBand) String() string {
	switch b {
	case BandNone:
		return "NONE"
	case BandInvalid:
		return "INVALID"
	case BandEmergencyBrake:
		return "EMERGENCY_BRAKE"
	case BandMaximumBrake:
		return "MAXIMUM_BRAKE"
	case BandMinimumBrake:
		return "MINIMUM_BRAKE"
	case BandOffCoast:
		return "OFF_COAST"
	case BandMinimumPower:
		return "MINIMUM_POWER"
	case BandMaximumPower:
		return "MAXIMUM_POWER"
	case BandInvalidHigh:
		return "INVALID_HIGH"
	}
	return "UNKNOWN"
}

// DiagBits is the diagnostic/LED bit vector. One bit per monitored
// condition, refreshed every Step.
type DiagBits uint16

const (
	DiagPenalty1Fault DiagBits = 1 << iota
	DiagPenalty2Fault
	DiagWarnLightFault
	DiagPowerSupply1Fault
	DiagPowerSupply2Fault
	DiagSpeedUnderRange
	DiagSpeedOverRange
	DiagSpeedInvalid
	DiagSpeed25Fault
	DiagPwmInvalid
	DiagMajorFault
	DiagPenaltyApplied
	DiagVisibleWarning
	DiagAudibleWarning
)

// Has reports whether bit is set.
func (d DiagBits) Has(bit DiagBits) bool {
	return d&bit != 0
}

// Inputs is one raw input frame, sampled once per base tick.
// Zero-order hold between hardware samples is the caller's concern.
type Inputs struct {
	// Task-linked activity sources (raw, pre-debounce).
	Horn            bool
	Wiper           bool
	Headlight       bool
	BypassAck       bool
	VigilanceButton bool

	// Mode condition inputs.
	CabActive  bool
	ZeroSpeed  bool
	Driverless bool
	CBTC       bool

	// Raw fault flags filtered at the 500ms cadence.
	PowerSupply1Fault bool
	PowerSupply2Fault bool
	SpeedUnderRange   bool
	SpeedOverRange    bool
	SpeedInvalid      bool
	Speed25Fault      bool

	// Master Controller PWM duty cycle, percent, per channel.
	Duty1 float64
	Duty2 float64

	// Wet output feedback levels.
	Penalty1Feedback  bool
	Penalty2Feedback  bool
	WarnLightFeedback bool
}

// EventType identifies an observable event produced by a Step.
type EventType string

const (
	EventModeChange      EventType = "MODE_CHANGE"
	EventWarning         EventType = "WARNING"
	EventTLAReset        EventType = "TLA_RESET"
	EventFault           EventType = "FAULT"
	EventPenaltyApplied  EventType = "PENALTY_APPLIED"
	EventPenaltyReleased EventType = "PENALTY_RELEASED"
)

// Event is an observable state change. Tick is the simulated tick at which
// the event was committed.
type Event struct {
	Tick    uint64
	Type    EventType
	Mode    OperatingMode
	Warning WarningState
	Channel string // fault channel name, EventFault only
	Counter int    // filter counter at confirmation, EventFault only
}

// FilterStatus is a read-only view of one fault filter.
type FilterStatus struct {
	Count     int
	Confirmed bool
}

// Snapshot is a point-in-time view of the whole unit. It is a value type,
// safe to hand across package boundaries.
type Snapshot struct {
	Tick           uint64
	Mode           OperatingMode
	Warning        WarningState
	TimerRemaining int
	PenaltyApplied bool
	VisibleWarning bool
	AudibleWarning bool
	NoPower        bool
	Band1          PwmBand
	Band2          PwmBand
	Diag           DiagBits

	Penalty1  FilterStatus
	Penalty2  FilterStatus
	WarnLight FilterStatus

	PowerSupply1 FilterStatus
	PowerSupply2 FilterStatus
	SpeedUnder   FilterStatus
	SpeedOver    FilterStatus
	SpeedInvalid FilterStatus
	Speed25      FilterStatus
}
