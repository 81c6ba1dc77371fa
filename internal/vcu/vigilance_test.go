package vcu

import "testing"

// shortReload keeps escalation tests fast while exercising the same paths.
var shortReload = ReloadTable{NoWarning: 100, FirstWarning: 50, SecondWarning: 50}

func runTicks(v *Vigilance, n int) {
	for i := 0; i < n; i++ {
		v.Tick(false, false)
	}
}

func TestVigilanceInitialState(t *testing.T) {
	v := NewVigilance(DefaultReloadTable())
	if v.State() != NoWarning {
		t.Errorf("expected NO_WARNING, got %s", v.State())
	}
	if v.TimerRemaining() != TimerDefault {
		t.Errorf("expected timer %d, got %d", TimerDefault, v.TimerRemaining())
	}
	if v.PenaltyApplied() {
		t.Error("penalty should not be applied initially")
	}
}

func TestVigilanceEscalationSequence(t *testing.T) {
	v := NewVigilance(shortReload)

	runTicks(v, 99)
	if v.State() != NoWarning {
		t.Fatalf("escalated early: %s", v.State())
	}

	v.Tick(false, false)
	if v.State() != FirstWarning {
		t.Fatalf("expected FIRST_WARNING at expiry, got %s", v.State())
	}
	if !v.Escalated() {
		t.Error("expected escalation pulse")
	}
	if v.TimerRemaining() != shortReload.FirstWarning {
		t.Errorf("expected reload %d, got %d", shortReload.FirstWarning, v.TimerRemaining())
	}

	runTicks(v, 50)
	if v.State() != SecondWarning {
		t.Fatalf("expected SECOND_WARNING, got %s", v.State())
	}

	// Expiry in SecondWarning applies the penalty and wraps the cycle.
	runTicks(v, 49)
	if v.PenaltyApplied() {
		t.Fatal("penalty applied early")
	}
	v.Tick(false, false)
	if !v.PenaltyApplied() {
		t.Error("expected penalty at timeout")
	}
	if !v.CycleComplete() {
		t.Error("expected cycle-complete pulse")
	}
	if v.State() != NoWarning {
		t.Errorf("expected wrap to NO_WARNING, got %s", v.State())
	}
	if v.TimerRemaining() != shortReload.NoWarning {
		t.Errorf("expected full reload %d, got %d", shortReload.NoWarning, v.TimerRemaining())
	}
}

func TestVigilanceDefaultExpiryTiming(t *testing.T) {
	v := NewVigilance(DefaultReloadTable())

	runTicks(v, TimerDefault-1)
	if v.State() != NoWarning {
		t.Fatalf("escalated before %d ticks", TimerDefault)
	}
	v.Tick(false, false)
	if v.State() != FirstWarning {
		t.Errorf("expected FIRST_WARNING after exactly %d ticks, got %s", TimerDefault, v.State())
	}
}

func TestVigilanceResetFromAnyState(t *testing.T) {
	states := []int{0, 100, 150} // ticks to reach NoWarning-late, First, Second
	for _, pre := range states {
		v := NewVigilance(shortReload)
		runTicks(v, pre)

		v.Tick(false, true)
		if v.State() != NoWarning {
			t.Errorf("after %d ticks + reset: got %s, want NO_WARNING", pre, v.State())
		}
		if v.TimerRemaining() != shortReload.NoWarning {
			t.Errorf("after %d ticks + reset: timer %d, want %d", pre, v.TimerRemaining(), shortReload.NoWarning)
		}
		if !v.WasReset() {
			t.Errorf("after %d ticks + reset: expected reset pulse", pre)
		}
	}
}

func TestVigilanceResetClearsPenalty(t *testing.T) {
	v := NewVigilance(shortReload)
	runTicks(v, 200) // full cycle: penalty applied
	if !v.PenaltyApplied() {
		t.Fatal("expected penalty after full cycle")
	}

	v.Tick(false, true)
	if v.PenaltyApplied() {
		t.Error("reset should release the penalty")
	}
}

func TestVigilancePenaltyPersistsAcrossWrap(t *testing.T) {
	v := NewVigilance(shortReload)
	runTicks(v, 200)
	if !v.PenaltyApplied() {
		t.Fatal("expected penalty")
	}

	// Without a reset the penalty holds while the FSM keeps cycling.
	runTicks(v, 150)
	if !v.PenaltyApplied() {
		t.Error("penalty released without reset")
	}
}

func TestVigilanceFrozenTimerHolds(t *testing.T) {
	v := NewVigilance(shortReload)
	runTicks(v, 30)
	before := v.TimerRemaining()

	for i := 0; i < 500; i++ {
		v.Tick(true, false)
	}
	if v.TimerRemaining() != before {
		t.Errorf("frozen timer moved: %d -> %d", before, v.TimerRemaining())
	}
	if v.State() != NoWarning {
		t.Errorf("frozen FSM escalated: %s", v.State())
	}

	// Unfrozen: countdown resumes from the stored value.
	v.Tick(false, false)
	if v.TimerRemaining() != before-1 {
		t.Errorf("expected %d after thaw, got %d", before-1, v.TimerRemaining())
	}
}

func TestVigilanceResetWinsOverFreeze(t *testing.T) {
	v := NewVigilance(shortReload)
	runTicks(v, 30)

	v.Tick(true, true)
	if v.TimerRemaining() != shortReload.NoWarning {
		t.Errorf("reset while frozen: timer %d, want %d", v.TimerRemaining(), shortReload.NoWarning)
	}
}

func TestVigilanceDeviceReset(t *testing.T) {
	v := NewVigilance(shortReload)
	runTicks(v, 200)

	v.Reset()
	if v.State() != NoWarning || v.TimerRemaining() != shortReload.NoWarning || v.PenaltyApplied() {
		t.Errorf("device reset left state=%s timer=%d penalty=%v",
			v.State(), v.TimerRemaining(), v.PenaltyApplied())
	}
}
