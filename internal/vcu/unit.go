package vcu

// Params are the configurable knobs of the unit. Everything else (tick
// cadences, thresholds, counter saturation) is fixed by the requirements.
type Params struct {
	DeadZonePolicy DeadZonePolicy
	Reload         ReloadTable
}

// DefaultParams returns the nominal configuration.
func DefaultParams() Params {
	return Params{
		DeadZonePolicy: DeadZoneStrict,
		Reload:         DefaultReloadTable(),
	}
}

// Unit is the complete vigilance control core. It owns all state; external
// layers drive it through Step and observe it through the returned events
// and Snapshot. Within one Step, components settle in fixed dependency
// order: classifiers and filters first, then the mode arbiter, then the
// vigilance FSM, then output drivers and comparators.
type Unit struct {
	params Params
	tick   uint64

	ch1 *DutyClassifier
	ch2 *DutyClassifier

	arbiter  *ModeArbiter
	vig      *Vigilance
	selfTest *SelfTest

	penalty1  *WetOutput
	penalty2  *WetOutput
	warnLight *WetOutput

	powerSupply1 *FaultFilter
	powerSupply2 *FaultFilter
	speedUnder   *FaultFilter
	speedOver    *FaultFilter
	speedInvalid *FaultFilter
	speed25      *FaultFilter

	horn      *debouncer
	wiper     *debouncer
	headlight *debouncer
	bypassAck *debouncer
	vigButton *debouncer

	// settled values carried across the tick boundary
	cycleComplete bool
	noPower       bool
	diag          DiagBits

	stChannel int
	stHigh    bool
	stLow     bool

	// previous-tick values for event edge detection
	prevMode      OperatingMode
	prevPenalty   bool
	prevConfirmed map[string]bool
}

// NewUnit creates a unit in Normal/NoWarning with all outputs de-energized.
func NewUnit(params Params) *Unit {
	if params.Reload == (ReloadTable{}) {
		params.Reload = DefaultReloadTable()
	}
	u := &Unit{
		params:   params,
		ch1:      NewDutyClassifier(params.DeadZonePolicy),
		ch2:      NewDutyClassifier(params.DeadZonePolicy),
		arbiter:  NewModeArbiter(),
		vig:      NewVigilance(params.Reload),
		selfTest: NewSelfTest(),

		penalty1:  NewWetOutput("penalty_brake_1"),
		penalty2:  NewWetOutput("penalty_brake_2"),
		warnLight: NewWetOutput("warning_light"),

		powerSupply1: NewFaultFilter("power_supply_1", SlowFilterTicks),
		powerSupply2: NewFaultFilter("power_supply_2", SlowFilterTicks),
		speedUnder:   NewFaultFilter("speed_under_range", SlowFilterTicks),
		speedOver:    NewFaultFilter("speed_over_range", SlowFilterTicks),
		speedInvalid: NewFaultFilter("speed_invalid", SlowFilterTicks),
		speed25:      NewFaultFilter("speed_25_range", SlowFilterTicks),

		horn:      newDebouncer(DebounceTicks),
		wiper:     newDebouncer(DebounceTicks),
		headlight: newDebouncer(DebounceTicks),
		bypassAck: newDebouncer(DebounceTicks),
		vigButton: newDebouncer(DebounceTicks),

		prevConfirmed: make(map[string]bool),
	}
	return u
}

// Step advances the unit one base tick with the given input frame and
// returns the events committed on that tick.
func (u *Unit) Step(in Inputs) []Event {
	u.tick++

	// 1. Combinational classification settles first.
	_, moved1 := u.ch1.Tick(in.Duty1)
	_, moved2 := u.ch2.Tick(in.Duty2)

	u.powerSupply1.Tick(in.PowerSupply1Fault)
	u.powerSupply2.Tick(in.PowerSupply2Fault)
	u.speedUnder.Tick(in.SpeedUnderRange)
	u.speedOver.Tick(in.SpeedOverRange)
	u.speedInvalid.Tick(in.SpeedInvalid)
	u.speed25.Tick(in.Speed25Fault)

	hornEdge := u.horn.tick(in.Horn)
	wiperEdge := u.wiper.tick(in.Wiper)
	headEdge := u.headlight.tick(in.Headlight)
	bypassEdge := u.bypassAck.tick(in.BypassAck)
	buttonEdge := u.vigButton.tick(in.VigilanceButton)

	tla := hornEdge || wiperEdge || headEdge || bypassEdge || moved1 || moved2
	reset := tla || buttonEdge

	// 2. Mode arbitration. The cycle-complete pulse is the one settled on
	// the previous tick; the vigilance FSM runs after the arbiter.
	mode := u.arbiter.Tick(ModeConditions{
		MajorFault:    u.penalty1.Confirmed() || u.penalty2.Confirmed(),
		Driverless:    in.Driverless,
		CBTC:          in.CBTC,
		ZeroSpeed:     in.ZeroSpeed,
		CabActive:     in.CabActive,
		VigilanceAck:  u.vigButton.level(),
		CycleComplete: u.cycleComplete,
	})

	// 3. Vigilance timing. The timer freezes only in MajorFault.
	u.vig.Tick(mode == ModeMajorFault, reset)
	u.cycleComplete = u.vig.CycleComplete()

	// 4. Output drivers and feedback comparators.
	visible := u.vig.State() != NoWarning
	audible := u.vig.State() == SecondWarning
	penalty := u.vig.PenaltyApplied() || mode == ModeMajorFault

	u.penalty1.Set(penalty)
	u.penalty2.Set(penalty)
	u.warnLight.Set(visible)

	u.penalty1.Tick(in.Penalty1Feedback)
	u.penalty2.Tick(in.Penalty2Feedback)
	u.warnLight.Tick(in.WarnLightFeedback)

	u.stChannel, u.stHigh, u.stLow = u.selfTest.Tick()

	// No-Power is acted on only when both channels agree.
	u.noPower = u.ch1.NoPower() && u.ch2.NoPower()

	u.diag = u.buildDiag(visible, audible, penalty)

	return u.collectEvents(mode, audible)
}

func (u *Unit) buildDiag(visible, audible, penalty bool) DiagBits {
	var d DiagBits
	set := func(bit DiagBits, on bool) {
		if on {
			d |= bit
		}
	}
	set(DiagPenalty1Fault, u.penalty1.Confirmed())
	set(DiagPenalty2Fault, u.penalty2.Confirmed())
	set(DiagWarnLightFault, u.warnLight.Confirmed())
	set(DiagPowerSupply1Fault, u.powerSupply1.Confirmed())
	set(DiagPowerSupply2Fault, u.powerSupply2.Confirmed())
	set(DiagSpeedUnderRange, u.speedUnder.Confirmed())
	set(DiagSpeedOverRange, u.speedOver.Confirmed())
	set(DiagSpeedInvalid, u.speedInvalid.Confirmed())
	set(DiagSpeed25Fault, u.speed25.Confirmed())
	set(DiagPwmInvalid, u.ch1.Invalid() || u.ch2.Invalid())
	set(DiagMajorFault, u.arbiter.MajorLatched())
	set(DiagPenaltyApplied, penalty)
	set(DiagVisibleWarning, visible)
	set(DiagAudibleWarning, audible)
	return d
}

type faultSource struct {
	name   string
	status FilterStatus
}

func (u *Unit) faultSources() []faultSource {
	return []faultSource{
		{u.penalty1.Name(), u.penalty1.Status()},
		{u.penalty2.Name(), u.penalty2.Status()},
		{u.warnLight.Name(), u.warnLight.Status()},
		{u.powerSupply1.Name(), u.powerSupply1.Status()},
		{u.powerSupply2.Name(), u.powerSupply2.Status()},
		{u.speedUnder.Name(), u.speedUnder.Status()},
		{u.speedOver.Name(), u.speedOver.Status()},
		{u.speedInvalid.Name(), u.speedInvalid.Status()},
		{u.speed25.Name(), u.speed25.Status()},
	}
}

func (u *Unit) collectEvents(mode OperatingMode, audible bool) []Event {
	var events []Event
	emit := func(e Event) {
		e.Tick = u.tick
		e.Mode = mode
		e.Warning = u.vig.State()
		events = append(events, e)
	}

	if mode != u.prevMode {
		emit(Event{Type: EventModeChange})
		u.prevMode = mode
	}
	if u.vig.Escalated() {
		emit(Event{Type: EventWarning})
	}
	if u.vig.WasReset() {
		emit(Event{Type: EventTLAReset})
	}

	for _, src := range u.faultSources() {
		if src.status.Confirmed && !u.prevConfirmed[src.name] {
			emit(Event{Type: EventFault, Channel: src.name, Counter: src.status.Count})
		}
		u.prevConfirmed[src.name] = src.status.Confirmed
	}

	penalty := u.vig.PenaltyApplied() || mode == ModeMajorFault
	if penalty && !u.prevPenalty {
		emit(Event{Type: EventPenaltyApplied})
	} else if !penalty && u.prevPenalty {
		emit(Event{Type: EventPenaltyReleased})
	}
	u.prevPenalty = penalty

	return events
}

// Tick returns the current simulated tick count.
func (u *Unit) Tick() uint64 { return u.tick }

// SelfTestLines returns the channel and levels of the input self-test
// lines settled on the last Step.
func (u *Unit) SelfTestLines() (channel int, testHigh, testLow bool) {
	return u.stChannel, u.stHigh, u.stLow
}

// Snapshot returns a read-only view of the unit state.
func (u *Unit) Snapshot() Snapshot {
	return Snapshot{
		Tick:           u.tick,
		Mode:           u.arbiter.Mode(),
		Warning:        u.vig.State(),
		TimerRemaining: u.vig.TimerRemaining(),
		PenaltyApplied: u.vig.PenaltyApplied() || u.arbiter.Mode() == ModeMajorFault,
		VisibleWarning: u.warnLight.Level(),
		AudibleWarning: u.vig.State() == SecondWarning,
		NoPower:        u.noPower,
		Band1:          u.ch1.Band(),
		Band2:          u.ch2.Band(),
		Diag:           u.diag,

		Penalty1:  u.penalty1.Status(),
		Penalty2:  u.penalty2.Status(),
		WarnLight: u.warnLight.Status(),

		PowerSupply1: u.powerSupply1.Status(),
		PowerSupply2: u.powerSupply2.Status(),
		SpeedUnder:   u.speedUnder.Status(),
		SpeedOver:    u.speedOver.Status(),
		SpeedInvalid: u.speedInvalid.Status(),
		Speed25:      u.speed25.Status(),
	}
}

// Reset is the device reset: every counter, confirmed-fault latch and FSM
// returns to its initial state. The simulated tick count keeps running.
func (u *Unit) Reset() {
	u.ch1.Reset()
	u.ch2.Reset()
	u.arbiter.Reset()
	u.vig.Reset()
	u.selfTest.Reset()

	u.penalty1.Reset()
	u.penalty2.Reset()
	u.warnLight.Reset()

	u.powerSupply1.Reset()
	u.powerSupply2.Reset()
	u.speedUnder.Reset()
	u.speedOver.Reset()
	u.speedInvalid.Reset()
	u.speed25.Reset()

	u.horn.reset()
	u.wiper.reset()
	u.headlight.reset()
	u.bypassAck.reset()
	u.vigButton.reset()

	u.cycleComplete = false
	u.noPower = false
	u.diag = 0
	u.stChannel = 0
	u.stHigh = false
	u.stLow = false

	u.prevMode = ModeNormal
	u.prevPenalty = false
	u.prevConfirmed = make(map[string]bool)
}
