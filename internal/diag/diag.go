// Package diag mirrors the unit's diagnostic state to an external train
// event recorder over Modbus TCP. The recorder exposes a coil block for
// the LED bit vector and a holding-register block for mode, warning and
// timer state.
package diag

import "github.com/sweeney/vcu-sim/internal/vcu"

// CoilCount is the number of diagnostic coils written per record.
const CoilCount = 16

// RegisterCount is the number of holding registers written per record.
// Layout: mode, warning, timer high word, timer low word.
const RegisterCount = 4

// Record is one diagnostic sample pushed to the recorder.
type Record struct {
	Bits           vcu.DiagBits
	Mode           vcu.OperatingMode
	Warning        vcu.WarningState
	TimerRemaining int
}

// Writer pushes diagnostic records to a recorder.
type Writer interface {
	// Write pushes one record. Returns error if the recorder is
	// unreachable (should not crash the process).
	Write(rec Record) error

	// Close releases the recorder connection.
	Close() error
}

// Coils expands the diagnostic bit vector into recorder coil order,
// bit 0 first.
func (r Record) Coils() []bool {
	bits := make([]bool, CoilCount)
	for i := 0; i < CoilCount; i++ {
		bits[i] = r.Bits&(1<<uint(i)) != 0
	}
	return bits
}

// Registers returns the holding-register block for this record. The
// vigilance timer exceeds one register at its 45s default, so it is
// split across two words, high first.
func (r Record) Registers() []uint16 {
	timer := uint32(r.TimerRemaining)
	return []uint16{
		uint16(r.Mode),
		uint16(r.Warning),
		uint16(timer >> 16),
		uint16(timer),
	}
}
