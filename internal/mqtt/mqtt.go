// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/vcu-sim/internal/vcu"
)

// Topic is the MQTT topic for vigilance unit events.
const Topic = "railway/vcu/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "railway/vcu/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a unit event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is a unit event stamped with the wall-clock time it was observed.
type Event struct {
	Timestamp time.Time
	Tick      uint64
	Type      vcu.EventType
	Mode      vcu.OperatingMode
	Warning   vcu.WarningState
	Channel   string
	Counter   int
}

// FromUnit stamps a unit event with a wall-clock timestamp for publishing.
func FromUnit(e vcu.Event, at time.Time) Event {
	return Event{
		Timestamp: at,
		Tick:      e.Tick,
		Type:      e.Type,
		Mode:      e.Mode,
		Warning:   e.Warning,
		Channel:   e.Channel,
		Counter:   e.Counter,
	}
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string         // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string         // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Config     *SystemConfig  // Effective configuration (startup only)
	Heartbeat  *HeartbeatInfo // Uptime and counters (heartbeat only)
	RawPayload []byte         // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool           // Whether the message should be retained by the broker
}

// SystemConfig echoes the effective runtime configuration in startup events.
type SystemConfig struct {
	PollMs         int    `json:"poll_ms"`
	HeartbeatMs    int    `json:"heartbeat_ms"`
	Broker         string `json:"broker"`
	DeadZonePolicy string `json:"dead_zone_policy"`
}

// HeartbeatInfo carries uptime and event counters in heartbeat events.
type HeartbeatInfo struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	EventCounts   HeartbeatCounts `json:"event_counts"`
}

// HeartbeatCounts tallies unit events published since startup.
type HeartbeatCounts struct {
	ModeChanges int `json:"mode_changes"`
	Warnings    int `json:"warnings"`
	TLAResets   int `json:"tla_resets"`
	Faults      int `json:"faults"`
	Penalties   int `json:"penalties"`
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	VCU EventPayload `json:"vcu"`
}

// EventPayload contains the unit event details.
type EventPayload struct {
	Timestamp string `json:"timestamp"`
	Tick      uint64 `json:"tick"`
	Event     string `json:"event"`
	Mode      string `json:"mode"`
	Warning   string `json:"warning"`
	Channel   string `json:"channel,omitempty"`
	Counter   int    `json:"counter,omitempty"`
}

// FormatPayload creates the JSON payload for a unit event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		VCU: EventPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Tick:      event.Tick,
			Event:     string(event.Type),
			Mode:      event.Mode.String(),
			Warning:   event.Warning.String(),
			Channel:   event.Channel,
			Counter:   event.Counter,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, HEARTBEAT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Reason    string         `json:"reason,omitempty"`
	Config    *SystemConfig  `json:"config,omitempty"`
	Heartbeat *HeartbeatInfo `json:"heartbeat,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
			Heartbeat: event.Heartbeat,
		},
	}
	return json.Marshal(payload)
}
