package vcu

// ReloadTable holds the countdown reload value, in base ticks, applied on
// entry to each warning state. The available requirements pin only the
// NoWarning default; the sub-periods default to the 5s nominal value and
// stay configurable.
type ReloadTable struct {
	NoWarning     int
	FirstWarning  int
	SecondWarning int
}

// DefaultReloadTable returns the nominal reload values.
func DefaultReloadTable() ReloadTable {
	return ReloadTable{
		NoWarning:     TimerDefault,
		FirstWarning:  WarningReload,
		SecondWarning: WarningReload,
	}
}

// Vigilance is the centralized vigilance timing FSM. A single countdown
// timer drives escalation NoWarning → FirstWarning → SecondWarning; expiry
// in SecondWarning applies the penalty and wraps the state back to
// NoWarning, completing the cycle. Any task-linked activity or an explicit
// acknowledge resets the FSM from any state.
type Vigilance struct {
	reload  ReloadTable
	state   WarningState
	timer   int
	penalty bool

	// pulse flags, valid for the tick they were produced on
	cycleComplete bool
	escalated     bool
	wasReset      bool
}

// NewVigilance creates the FSM in NoWarning with a full timer.
func NewVigilance(reload ReloadTable) *Vigilance {
	return &Vigilance{reload: reload, timer: reload.NoWarning}
}

// Tick advances one base tick. frozen stops the countdown (MajorFault
// mode); reset is a registered TLA event or acknowledge pulse and wins
// over the countdown.
func (v *Vigilance) Tick(frozen, reset bool) {
	v.cycleComplete = false
	v.escalated = false
	v.wasReset = false

	if reset {
		v.state = NoWarning
		v.timer = v.reload.NoWarning
		v.penalty = false
		v.wasReset = true
		return
	}

	if frozen || v.timer <= 0 {
		return
	}

	v.timer--
	if v.timer > 0 {
		return
	}

	switch v.state {
	case NoWarning:
		v.state = FirstWarning
		v.timer = v.reload.FirstWarning
		v.escalated = true
	case FirstWarning:
		v.state = SecondWarning
		v.timer = v.reload.SecondWarning
		v.escalated = true
	case SecondWarning:
		// Full cycle traversed: penalty applies and the FSM wraps.
		v.penalty = true
		v.state = NoWarning
		v.timer = v.reload.NoWarning
		v.cycleComplete = true
	}
}

// State returns the current warning state.
func (v *Vigilance) State() WarningState { return v.state }

// TimerRemaining returns the countdown value in base ticks.
func (v *Vigilance) TimerRemaining() int { return v.timer }

// PenaltyApplied reports whether the penalty demand is active. It clears
// on the next reset (TLA or acknowledge).
func (v *Vigilance) PenaltyApplied() bool { return v.penalty }

// CycleComplete pulses true for the tick on which a full escalation cycle
// wrapped back to NoWarning.
func (v *Vigilance) CycleComplete() bool { return v.cycleComplete }

// Escalated pulses true for the tick on which the warning state advanced.
func (v *Vigilance) Escalated() bool { return v.escalated }

// WasReset pulses true for the tick on which a reset was registered.
func (v *Vigilance) WasReset() bool { return v.wasReset }

// Reset restores the initial state: NoWarning, full timer, no penalty.
func (v *Vigilance) Reset() {
	v.state = NoWarning
	v.timer = v.reload.NoWarning
	v.penalty = false
	v.cycleComplete = false
	v.escalated = false
	v.wasReset = false
}
