package config

import "github.com/sweeney/vcu-sim/internal/vcu"

// Default runtime values.
const (
	DefaultBroker      = "tcp://127.0.0.1:1883"
	DefaultHTTP        = ":8080"
	DefaultPollMs      = 10
	DefaultHeartbeatMs = 15 * 60 * 1000
	DefaultDiagTimeout = 1000
)

// defaultPins is the nominal line assignment (BCM numbering).
var defaultPins = PinsConfig{
	Horn:            2,
	Wiper:           3,
	Headlight:       4,
	BypassAck:       5,
	VigilanceButton: 6,

	CabActive:  7,
	ZeroSpeed:  8,
	Driverless: 9,
	CBTC:       10,

	PowerSupply1: 11,
	PowerSupply2: 12,
	SpeedUnder:   13,
	SpeedOver:    14,
	SpeedInvalid: 15,
	Speed25:      16,

	PWM1: 17,
	PWM2: 18,

	Penalty1Feedback:  19,
	Penalty2Feedback:  20,
	WarnLightFeedback: 21,
}

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	v := &cfg.VCU

	if v.Broker == "" {
		v.Broker = DefaultBroker
	}
	if v.HTTP == "" {
		v.HTTP = DefaultHTTP
	}
	if v.PollMs == 0 {
		v.PollMs = DefaultPollMs
	}
	if v.HeartbeatMs == 0 {
		v.HeartbeatMs = DefaultHeartbeatMs
	}

	if v.PWM.DeadZonePolicy == "" {
		v.PWM.DeadZonePolicy = string(vcu.DeadZoneStrict)
	}

	if v.Timers.NoWarningTicks == 0 {
		v.Timers.NoWarningTicks = vcu.TimerDefault
	}
	if v.Timers.FirstWarningTicks == 0 {
		v.Timers.FirstWarningTicks = vcu.WarningReload
	}
	if v.Timers.SecondWarningTicks == 0 {
		v.Timers.SecondWarningTicks = vcu.WarningReload
	}

	if v.Diag.Endpoint != "" && v.Diag.TimeoutMs == 0 {
		v.Diag.TimeoutMs = DefaultDiagTimeout
	}

	fillPinDefaults(&v.Pins)
}

func fillPinDefaults(p *PinsConfig) {
	def := defaultPins
	fill := func(pin *int, d int) {
		if *pin == 0 {
			*pin = d
		}
	}
	fill(&p.Horn, def.Horn)
	fill(&p.Wiper, def.Wiper)
	fill(&p.Headlight, def.Headlight)
	fill(&p.BypassAck, def.BypassAck)
	fill(&p.VigilanceButton, def.VigilanceButton)
	fill(&p.CabActive, def.CabActive)
	fill(&p.ZeroSpeed, def.ZeroSpeed)
	fill(&p.Driverless, def.Driverless)
	fill(&p.CBTC, def.CBTC)
	fill(&p.PowerSupply1, def.PowerSupply1)
	fill(&p.PowerSupply2, def.PowerSupply2)
	fill(&p.SpeedUnder, def.SpeedUnder)
	fill(&p.SpeedOver, def.SpeedOver)
	fill(&p.SpeedInvalid, def.SpeedInvalid)
	fill(&p.Speed25, def.Speed25)
	fill(&p.PWM1, def.PWM1)
	fill(&p.PWM2, def.PWM2)
	fill(&p.Penalty1Feedback, def.Penalty1Feedback)
	fill(&p.Penalty2Feedback, def.Penalty2Feedback)
	fill(&p.WarnLightFeedback, def.WarnLightFeedback)
}
