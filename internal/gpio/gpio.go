// Package gpio reads the raw VCU input frame with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Frame is one raw input sample: discrete cab/fault lines plus the
// measured Master Controller duty cycle per channel (percent).
type Frame struct {
	Horn            bool
	Wiper           bool
	Headlight       bool
	BypassAck       bool
	VigilanceButton bool

	CabActive  bool
	ZeroSpeed  bool
	Driverless bool
	CBTC       bool

	PowerSupply1Fault bool
	PowerSupply2Fault bool
	SpeedUnderRange   bool
	SpeedOverRange    bool
	SpeedInvalid      bool
	Speed25Fault      bool

	Duty1 float64
	Duty2 float64

	Penalty1Feedback  bool
	Penalty2Feedback  bool
	WarnLightFeedback bool
}

// Pins maps input signals to GPIO line offsets (BCM numbering).
type Pins struct {
	Horn            int
	Wiper           int
	Headlight       int
	BypassAck       int
	VigilanceButton int

	CabActive  int
	ZeroSpeed  int
	Driverless int
	CBTC       int

	PowerSupply1 int
	PowerSupply2 int
	SpeedUnder   int
	SpeedOver    int
	SpeedInvalid int
	Speed25      int

	PWM1 int
	PWM2 int

	Penalty1Feedback  int
	Penalty2Feedback  int
	WarnLightFeedback int
}

// Reader reads input frames.
type Reader interface {
	// Read returns the current input frame.
	Read() (Frame, error)

	// Close releases GPIO resources.
	Close() error
}
