package diag

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Config describes one recorder endpoint.
type Config struct {
	Endpoint        string
	UnitID          uint8
	CoilAddress     uint16
	RegisterAddress uint16
	Timeout         time.Duration
}

// ModbusWriter is a single TCP connection to one recorder endpoint.
// It serializes requests because the handler is not safe for concurrent
// use.
type ModbusWriter struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
	cfg     Config
}

// NewModbusWriter connects to the recorder at cfg.Endpoint.
func NewModbusWriter(cfg Config) (*ModbusWriter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("diag: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("connect to recorder: %w", err)
	}

	return &ModbusWriter{
		handler: h,
		client:  modbus.NewClient(h),
		cfg:     cfg,
	}, nil
}

// Write pushes one record: the coil block first, then the register block.
func (w *ModbusWriter) Write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	coils := packBits(rec.Coils())
	if _, err := w.client.WriteMultipleCoils(w.cfg.CoilAddress, CoilCount, coils); err != nil {
		return fmt.Errorf("write coils: %w", err)
	}

	regs := packRegisters(rec.Registers())
	if _, err := w.client.WriteMultipleRegisters(w.cfg.RegisterAddress, RegisterCount, regs); err != nil {
		return fmt.Errorf("write registers: %w", err)
	}

	return nil
}

// Close releases the recorder connection.
func (w *ModbusWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handler.Close()
}

func packBits(bits []bool) []byte {
	n := (len(bits) + 7) / 8
	out := make([]byte, n)
	for i, v := range bits {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
