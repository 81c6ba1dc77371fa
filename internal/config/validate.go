package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	v := &cfg.VCU

	if v.PollMs < 0 {
		return fmt.Errorf("poll_ms must not be negative, got %d", v.PollMs)
	}
	if v.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms must not be negative, got %d", v.HeartbeatMs)
	}

	switch v.PWM.DeadZonePolicy {
	case "", "strict", "inclusive":
	default:
		return fmt.Errorf("pwm.dead_zone_policy must be %q or %q, got %q",
			"strict", "inclusive", v.PWM.DeadZonePolicy)
	}

	for name, ticks := range map[string]int{
		"timers.no_warning_ticks":     v.Timers.NoWarningTicks,
		"timers.first_warning_ticks":  v.Timers.FirstWarningTicks,
		"timers.second_warning_ticks": v.Timers.SecondWarningTicks,
	} {
		if ticks < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, ticks)
		}
	}

	if v.Diag.Endpoint != "" && v.Diag.TimeoutMs < 0 {
		return fmt.Errorf("diag.timeout_ms must not be negative, got %d", v.Diag.TimeoutMs)
	}

	// Every assigned pin must be unique.
	pins := map[string]int{
		"horn":                v.Pins.Horn,
		"wiper":               v.Pins.Wiper,
		"headlight":           v.Pins.Headlight,
		"bypass_ack":          v.Pins.BypassAck,
		"vigilance_button":    v.Pins.VigilanceButton,
		"cab_active":          v.Pins.CabActive,
		"zero_speed":          v.Pins.ZeroSpeed,
		"driverless":          v.Pins.Driverless,
		"cbtc":                v.Pins.CBTC,
		"power_supply_1":      v.Pins.PowerSupply1,
		"power_supply_2":      v.Pins.PowerSupply2,
		"speed_under":         v.Pins.SpeedUnder,
		"speed_over":          v.Pins.SpeedOver,
		"speed_invalid":       v.Pins.SpeedInvalid,
		"speed_25":            v.Pins.Speed25,
		"pwm_1":               v.Pins.PWM1,
		"pwm_2":               v.Pins.PWM2,
		"penalty_1_feedback":  v.Pins.Penalty1Feedback,
		"penalty_2_feedback":  v.Pins.Penalty2Feedback,
		"warn_light_feedback": v.Pins.WarnLightFeedback,
	}
	owner := make(map[int]string)
	for name, pin := range pins {
		if pin < 0 {
			return fmt.Errorf("pins.%s must not be negative, got %d", name, pin)
		}
		if pin == 0 {
			// Unassigned: normalization fills the default.
			continue
		}
		if prev, exists := owner[pin]; exists {
			return fmt.Errorf("pin collision: line %d assigned to both pins.%s and pins.%s",
				pin, prev, name)
		}
		owner[pin] = name
	}

	return nil
}
