package diag

import (
	"errors"
	"testing"

	"github.com/sweeney/vcu-sim/internal/vcu"
)

func TestRecordCoils(t *testing.T) {
	rec := Record{
		Bits: vcu.DiagPenalty1Fault | vcu.DiagMajorFault | vcu.DiagAudibleWarning,
	}

	coils := rec.Coils()
	if len(coils) != CoilCount {
		t.Fatalf("expected %d coils, got %d", CoilCount, len(coils))
	}

	want := map[int]bool{
		0:  true, // penalty 1 fault
		10: true, // major fault
		13: true, // audible warning
	}
	for i, v := range coils {
		if v != want[i] {
			t.Errorf("coil %d: got %v, want %v", i, v, want[i])
		}
	}
}

func TestRecordCoilsEmpty(t *testing.T) {
	coils := Record{}.Coils()
	for i, v := range coils {
		if v {
			t.Errorf("coil %d: expected false", i)
		}
	}
}

func TestRecordRegisters(t *testing.T) {
	rec := Record{
		Mode:           vcu.ModeTest,
		Warning:        vcu.SecondWarning,
		TimerRemaining: vcu.TimerDefault, // 89999 > one register
	}

	regs := rec.Registers()
	if len(regs) != RegisterCount {
		t.Fatalf("expected %d registers, got %d", RegisterCount, len(regs))
	}

	if regs[0] != uint16(vcu.ModeTest) {
		t.Errorf("mode register: got %d", regs[0])
	}
	if regs[1] != uint16(vcu.SecondWarning) {
		t.Errorf("warning register: got %d", regs[1])
	}

	timer := uint32(regs[2])<<16 | uint32(regs[3])
	if timer != uint32(vcu.TimerDefault) {
		t.Errorf("timer: got %d, want %d", timer, vcu.TimerDefault)
	}
}

func TestRecordRegistersSmallTimer(t *testing.T) {
	regs := Record{TimerRemaining: 500}.Registers()

	if regs[2] != 0 {
		t.Errorf("high word: got %d, want 0", regs[2])
	}
	if regs[3] != 500 {
		t.Errorf("low word: got %d, want 500", regs[3])
	}
}

func TestPackBits(t *testing.T) {
	bits := make([]bool, 16)
	bits[0] = true
	bits[7] = true
	bits[8] = true

	out := packBits(bits)
	if len(out) != 2 {
		t.Fatalf("expected 2 bytes, got %d", len(out))
	}
	if out[0] != 0x81 {
		t.Errorf("byte 0: got %#x, want 0x81", out[0])
	}
	if out[1] != 0x01 {
		t.Errorf("byte 1: got %#x, want 0x01", out[1])
	}
}

func TestPackBitsPartialByte(t *testing.T) {
	out := packBits([]bool{true, false, true})
	if len(out) != 1 {
		t.Fatalf("expected 1 byte, got %d", len(out))
	}
	if out[0] != 0x05 {
		t.Errorf("got %#x, want 0x05", out[0])
	}
}

func TestPackRegisters(t *testing.T) {
	out := packRegisters([]uint16{0x0102, 0xABCD})
	want := []byte{0x01, 0x02, 0xAB, 0xCD}
	if len(out) != len(want) {
		t.Fatalf("expected %d bytes, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, out[i], want[i])
		}
	}
}

func TestNewModbusWriterRequiresEndpoint(t *testing.T) {
	_, err := NewModbusWriter(Config{})
	if err == nil {
		t.Error("expected error with empty endpoint")
	}
}

func TestFakeWriter(t *testing.T) {
	f := NewFakeWriter()

	rec := Record{Bits: vcu.DiagMajorFault, Mode: vcu.ModeMajorFault}
	if err := f.Write(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(f.Records))
	}
	if f.Records[0].Mode != vcu.ModeMajorFault {
		t.Errorf("unexpected mode: %v", f.Records[0].Mode)
	}
}

func TestFakeWriterError(t *testing.T) {
	f := NewFakeWriter()
	f.WriteError = errors.New("simulated error")

	if err := f.Write(Record{}); err == nil {
		t.Error("expected error")
	}
	if len(f.Records) != 0 {
		t.Errorf("expected no records on error, got %d", len(f.Records))
	}
}

func TestFakeWriterClose(t *testing.T) {
	f := NewFakeWriter()

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

// Interface compliance at compile time.
var _ Writer = (*ModbusWriter)(nil)
var _ Writer = (*FakeWriter)(nil)
