// Package status provides a thread-safe status tracker for the vcu-sim daemon.
// It is read by HTTP handlers and the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/vcu-sim/internal/vcu"
)

// EventCounts tallies unit events since startup. This is a local copy to
// avoid importing internal/mqtt from status.
type EventCounts struct {
	ModeChanges int
	Warnings    int
	TLAResets   int
	Faults      int
	Penalties   int
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs         int
	HeartbeatMs    int
	Broker         string
	HTTPPort       string
	DeadZonePolicy string
	DiagEndpoint   string // Modbus diagnostic recorder (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Unit          vcu.Snapshot
	Counts        EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	DiagConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the unit snapshot and event counts.
// Called from runLoop after every poll.
func (t *Tracker) Update(unit vcu.Snapshot, counts EventCounts) {
	t.mu.Lock()
	t.snap.Unit = unit
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetDiagConnected sets the diagnostic recorder connection status.
func (t *Tracker) SetDiagConnected(connected bool) {
	t.mu.Lock()
	t.snap.DiagConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
