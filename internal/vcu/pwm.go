package vcu

// Master Controller demand thresholds, percent duty cycle of the nominal
// 500Hz PWM signal.
const (
	thInvalid     = 5.0
	thEmergency   = 10.0
	thMaxBrake    = 18.89
	thMinBrake    = 43.33
	thMinPower    = 56.67
	thMaxPower    = 90.0
	thInvalidHigh = 95.0

	// BandTolerance is the ±0.3 percentage-point dead zone at every
	// threshold. A sample inside a dead zone belongs to no band.
	BandTolerance = 0.3

	// MovementThreshold is the duty movement, in percentage points, that
	// counts as task-linked activity.
	MovementThreshold = 12.5
)

// DeadZonePolicy selects how the 5% and 95% boundaries are decoded. The
// textual requirement leaves the edge ambiguous, so it is configurable.
type DeadZonePolicy string

const (
	// DeadZoneStrict keeps the ±0.3pp dead zone at the 5% and 95%
	// boundaries, like every other threshold. Default.
	DeadZoneStrict DeadZonePolicy = "strict"

	// DeadZoneInclusive lets Invalid and InvalidHigh claim their
	// tolerance bands, leaving no dead zone at 5% and 95%.
	DeadZoneInclusive DeadZonePolicy = "inclusive"
)

// ClassifyDuty decodes a duty cycle (percent) into a discrete demand band.
//
// Band membership above a threshold t starts at t+tol inclusive; below a
// threshold it ends at t−tol exclusive. The point bands at 43.33% and
// 56.67% are the open interval (t−tol, t+tol). Everything else, including
// the continuously-variable brake and power regions, decodes as BandNone.
func ClassifyDuty(d float64, policy DeadZonePolicy) PwmBand {
	const tol = BandTolerance

	inclusive := policy == DeadZoneInclusive

	switch {
	case d < 0 || d > 100:
		return BandNone
	case d < thInvalid-tol:
		return BandInvalid
	case inclusive && d < thInvalid+tol:
		return BandInvalid
	case d >= thInvalid+tol && d < thEmergency-tol:
		return BandEmergencyBrake
	case d >= thEmergency+tol && d < thMaxBrake-tol:
		return BandMaximumBrake
	case d > thMinBrake-tol && d < thMinBrake+tol:
		return BandMinimumBrake
	case d >= thMinBrake+tol && d < thMinPower-tol:
		return BandOffCoast
	case d > thMinPower-tol && d < thMinPower+tol:
		return BandMinimumPower
	case d >= thMaxPower+tol && d < thInvalidHigh-tol:
		return BandMaximumPower
	case d >= thInvalidHigh+tol:
		return BandInvalidHigh
	case inclusive && d >= thInvalidHigh-tol:
		return BandInvalidHigh
	}
	return BandNone
}

// DutyClassifier tracks one PWM channel: its current band and the movement
// reference used for task-linked-activity detection.
type DutyClassifier struct {
	policy  DeadZonePolicy
	band    PwmBand
	noPower bool
	ref     float64
	haveRef bool
}

// NewDutyClassifier creates a classifier for one channel.
func NewDutyClassifier(policy DeadZonePolicy) *DutyClassifier {
	if policy == "" {
		policy = DeadZoneStrict
	}
	return &DutyClassifier{policy: policy}
}

// Tick classifies one duty sample. moved is true when the duty has moved at
// least MovementThreshold percentage points since the last registered
// movement (or the first sample).
func (c *DutyClassifier) Tick(duty float64) (band PwmBand, moved bool) {
	c.band = ClassifyDuty(duty, c.policy)

	// No-Power asserts for demand bands strictly below the 56.67%
	// threshold; invalid bands and dead zones hold the previous value.
	switch c.band {
	case BandEmergencyBrake, BandMaximumBrake, BandMinimumBrake, BandOffCoast:
		c.noPower = true
	case BandMinimumPower, BandMaximumPower:
		c.noPower = false
	}

	if !c.haveRef {
		c.ref = duty
		c.haveRef = true
		return c.band, false
	}

	if diff := duty - c.ref; diff >= MovementThreshold || diff <= -MovementThreshold {
		c.ref = duty
		return c.band, true
	}
	return c.band, false
}

// Band returns the band from the last Tick.
func (c *DutyClassifier) Band() PwmBand { return c.band }

// NoPower reports the no-power indication from the last Tick.
func (c *DutyClassifier) NoPower() bool { return c.noPower }

// Invalid reports whether the last sample decoded to an invalid band.
func (c *DutyClassifier) Invalid() bool {
	return c.band == BandInvalid || c.band == BandInvalidHigh
}

// Reset clears the band and the movement reference.
func (c *DutyClassifier) Reset() {
	c.band = BandNone
	c.noPower = false
	c.ref = 0
	c.haveRef = false
}

// CrossCheck combines the two channel bands. The channels must agree before
// downstream logic acts on a discrete demand; a disagreement decodes as
// BandNone.
func CrossCheck(b1, b2 PwmBand) PwmBand {
	if b1 == b2 {
		return b1
	}
	return BandNone
}
