//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// dutyWindow is the number of samples over which a PWM channel's duty
// cycle is estimated. At the nominal 10ms poll the estimate spans 640ms.
const dutyWindow = 64

// RealReader reads the input frame from actual hardware using the Linux
// GPIO character device. The PWM duty cycles are estimated by sampling
// the channel lines; accuracy depends on the caller's poll rate.
type RealReader struct {
	chip     *gpiocdev.Chip
	bindings []lineBinding
	pwm1     *dutyMeter
	pwm2     *dutyMeter
	pwm1Line *gpiocdev.Line
	pwm2Line *gpiocdev.Line
}

// lineBinding ties one requested line to its destination in the frame.
type lineBinding struct {
	name string
	line *gpiocdev.Line
	set  func(*Frame, bool)
}

// NewRealReader requests every configured input line.
func NewRealReader(pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{
		chip: chip,
		pwm1: newDutyMeter(dutyWindow),
		pwm2: newDutyMeter(dutyWindow),
	}

	wanted := []struct {
		name string
		pin  int
		set  func(*Frame, bool)
	}{
		{"horn", pins.Horn, func(f *Frame, v bool) { f.Horn = v }},
		{"wiper", pins.Wiper, func(f *Frame, v bool) { f.Wiper = v }},
		{"headlight", pins.Headlight, func(f *Frame, v bool) { f.Headlight = v }},
		{"bypass_ack", pins.BypassAck, func(f *Frame, v bool) { f.BypassAck = v }},
		{"vigilance_button", pins.VigilanceButton, func(f *Frame, v bool) { f.VigilanceButton = v }},
		{"cab_active", pins.CabActive, func(f *Frame, v bool) { f.CabActive = v }},
		{"zero_speed", pins.ZeroSpeed, func(f *Frame, v bool) { f.ZeroSpeed = v }},
		{"driverless", pins.Driverless, func(f *Frame, v bool) { f.Driverless = v }},
		{"cbtc", pins.CBTC, func(f *Frame, v bool) { f.CBTC = v }},
		{"power_supply_1", pins.PowerSupply1, func(f *Frame, v bool) { f.PowerSupply1Fault = v }},
		{"power_supply_2", pins.PowerSupply2, func(f *Frame, v bool) { f.PowerSupply2Fault = v }},
		{"speed_under", pins.SpeedUnder, func(f *Frame, v bool) { f.SpeedUnderRange = v }},
		{"speed_over", pins.SpeedOver, func(f *Frame, v bool) { f.SpeedOverRange = v }},
		{"speed_invalid", pins.SpeedInvalid, func(f *Frame, v bool) { f.SpeedInvalid = v }},
		{"speed_25", pins.Speed25, func(f *Frame, v bool) { f.Speed25Fault = v }},
		{"penalty_1_feedback", pins.Penalty1Feedback, func(f *Frame, v bool) { f.Penalty1Feedback = v }},
		{"penalty_2_feedback", pins.Penalty2Feedback, func(f *Frame, v bool) { f.Penalty2Feedback = v }},
		{"warn_light_feedback", pins.WarnLightFeedback, func(f *Frame, v bool) { f.WarnLightFeedback = v }},
	}

	for _, w := range wanted {
		line, err := r.request(w.pin)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", w.name, w.pin, err)
		}
		r.bindings = append(r.bindings, lineBinding{name: w.name, line: line, set: w.set})
	}

	if r.pwm1Line, err = r.request(pins.PWM1); err != nil {
		r.Close()
		return nil, fmt.Errorf("request pwm_1 pin %d: %w", pins.PWM1, err)
	}
	if r.pwm2Line, err = r.request(pins.PWM2); err != nil {
		r.Close()
		return nil, fmt.Errorf("request pwm_2 pin %d: %w", pins.PWM2, err)
	}

	return r, nil
}

func (r *RealReader) request(pin int) (*gpiocdev.Line, error) {
	// Pull-down to match the opto-isolated input boards, same as the
	// bench harness wiring.
	return r.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
}

// Read samples every line into a frame.
func (r *RealReader) Read() (Frame, error) {
	var frame Frame
	for _, b := range r.bindings {
		v, err := b.line.Value()
		if err != nil {
			return Frame{}, fmt.Errorf("read %s: %w", b.name, err)
		}
		b.set(&frame, v != 0)
	}

	v1, err := r.pwm1Line.Value()
	if err != nil {
		return Frame{}, fmt.Errorf("read pwm_1: %w", err)
	}
	v2, err := r.pwm2Line.Value()
	if err != nil {
		return Frame{}, fmt.Errorf("read pwm_2: %w", err)
	}
	frame.Duty1 = r.pwm1.sample(v1 != 0)
	frame.Duty2 = r.pwm2.sample(v2 != 0)

	return frame, nil
}

// Close releases all requested lines and the chip.
func (r *RealReader) Close() error {
	for _, b := range r.bindings {
		b.line.Close()
	}
	if r.pwm1Line != nil {
		r.pwm1Line.Close()
	}
	if r.pwm2Line != nil {
		r.pwm2Line.Close()
	}
	return r.chip.Close()
}
