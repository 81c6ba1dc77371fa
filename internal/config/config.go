// Package config loads and checks the vcu-sim configuration file.
// Validation is declarative and never mutates; normalization fills
// defaults and runs only after validation.
package config

import (
	"github.com/sweeney/vcu-sim/internal/vcu"
)

type Config struct {
	VCU VCUConfig `yaml:"vcu"`
}

type VCUConfig struct {
	Broker      string `yaml:"broker"`
	HTTP        string `yaml:"http"`
	PollMs      int    `yaml:"poll_ms"`
	HeartbeatMs int    `yaml:"heartbeat_ms"`

	Diag   DiagConfig   `yaml:"diag"`
	PWM    PWMConfig    `yaml:"pwm"`
	Timers TimersConfig `yaml:"timers"`
	Pins   PinsConfig   `yaml:"pins"`
}

// DiagConfig describes the train diagnostic recorder target. The recorder
// is opt-in: an empty endpoint disables diagnostic writes.
type DiagConfig struct {
	Endpoint        string `yaml:"endpoint"`
	UnitID          uint8  `yaml:"unit_id"`
	CoilAddress     uint16 `yaml:"coil_address"`
	RegisterAddress uint16 `yaml:"register_address"`
	TimeoutMs       int    `yaml:"timeout_ms"`
}

type PWMConfig struct {
	// DeadZonePolicy is "strict" or "inclusive"; see vcu.DeadZonePolicy.
	DeadZonePolicy string `yaml:"dead_zone_policy"`
}

// TimersConfig holds the vigilance reload table in base ticks (500µs).
// Zero values take the nominal defaults during normalization.
type TimersConfig struct {
	NoWarningTicks     int `yaml:"no_warning_ticks"`
	FirstWarningTicks  int `yaml:"first_warning_ticks"`
	SecondWarningTicks int `yaml:"second_warning_ticks"`
}

// PinsConfig maps input signals to GPIO line offsets (BCM numbering).
type PinsConfig struct {
	Horn            int `yaml:"horn"`
	Wiper           int `yaml:"wiper"`
	Headlight       int `yaml:"headlight"`
	BypassAck       int `yaml:"bypass_ack"`
	VigilanceButton int `yaml:"vigilance_button"`

	CabActive  int `yaml:"cab_active"`
	ZeroSpeed  int `yaml:"zero_speed"`
	Driverless int `yaml:"driverless"`
	CBTC       int `yaml:"cbtc"`

	PowerSupply1 int `yaml:"power_supply_1"`
	PowerSupply2 int `yaml:"power_supply_2"`
	SpeedUnder   int `yaml:"speed_under"`
	SpeedOver    int `yaml:"speed_over"`
	SpeedInvalid int `yaml:"speed_invalid"`
	Speed25      int `yaml:"speed_25"`

	PWM1 int `yaml:"pwm_1"`
	PWM2 int `yaml:"pwm_2"`

	Penalty1Feedback  int `yaml:"penalty_1_feedback"`
	Penalty2Feedback  int `yaml:"penalty_2_feedback"`
	WarnLightFeedback int `yaml:"warn_light_feedback"`
}

// Params converts the validated, normalized config into core parameters.
func (c *VCUConfig) Params() vcu.Params {
	return vcu.Params{
		DeadZonePolicy: vcu.DeadZonePolicy(c.PWM.DeadZonePolicy),
		Reload: vcu.ReloadTable{
			NoWarning:     c.Timers.NoWarningTicks,
			FirstWarning:  c.Timers.FirstWarningTicks,
			SecondWarning: c.Timers.SecondWarningTicks,
		},
	}
}
