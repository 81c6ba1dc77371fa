package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/vcu-sim/internal/vcu"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string      `json:"event,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	Tick           uint64      `json:"tick"`
	Mode           string      `json:"mode"`
	Warning        string      `json:"warning"`
	TimerRemaining int         `json:"timer_remaining_ticks"`
	PenaltyApplied bool        `json:"penalty_applied"`
	NoPower        bool        `json:"no_power"`
	Band1          string      `json:"band_1"`
	Band2          string      `json:"band_2"`
	Diag           uint16      `json:"diag_bits"`
	UptimeSeconds  int64       `json:"uptime_seconds"`
	StartTime      string      `json:"start_time"`
	Timestamp      string      `json:"timestamp"`
	MQTT           MQTTStatus  `json:"mqtt"`
	Diagnostics    DiagStatus  `json:"diagnostics"`
	Filters        FiltersJSON `json:"filters"`
	Counts         CountsJSON  `json:"event_counts"`
	Config         ConfigJSON  `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// DiagStatus reports diagnostic recorder connection state.
type DiagStatus struct {
	Connected bool   `json:"connected"`
	Endpoint  string `json:"endpoint,omitempty"`
}

// FilterJSON is the JSON representation of one fault filter.
type FilterJSON struct {
	Count     int  `json:"count"`
	Confirmed bool `json:"confirmed"`
}

// FiltersJSON collects every fault filter by channel name.
type FiltersJSON struct {
	Penalty1     FilterJSON `json:"penalty_1"`
	Penalty2     FilterJSON `json:"penalty_2"`
	WarnLight    FilterJSON `json:"warn_light"`
	PowerSupply1 FilterJSON `json:"power_supply_1"`
	PowerSupply2 FilterJSON `json:"power_supply_2"`
	SpeedUnder   FilterJSON `json:"speed_under_range"`
	SpeedOver    FilterJSON `json:"speed_over_range"`
	SpeedInvalid FilterJSON `json:"speed_invalid"`
	Speed25      FilterJSON `json:"speed_25_range"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	ModeChanges int `json:"mode_changes"`
	Warnings    int `json:"warnings"`
	TLAResets   int `json:"tla_resets"`
	Faults      int `json:"faults"`
	Penalties   int `json:"penalties"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs         int    `json:"poll_ms"`
	HeartbeatMs    int    `json:"heartbeat_ms"`
	Broker         string `json:"broker"`
	HTTPPort       string `json:"http_port"`
	DeadZonePolicy string `json:"dead_zone_policy"`
	DiagEndpoint   string `json:"diag_endpoint,omitempty"`
}

func filterJSON(f vcu.FilterStatus) FilterJSON {
	return FilterJSON{Count: f.Count, Confirmed: f.Confirmed}
}

func buildInner(snap Snapshot) StatusInner {
	u := snap.Unit

	return StatusInner{
		Tick:           u.Tick,
		Mode:           u.Mode.String(),
		Warning:        u.Warning.String(),
		TimerRemaining: u.TimerRemaining,
		PenaltyApplied: u.PenaltyApplied,
		NoPower:        u.NoPower,
		Band1:          u.Band1.String(),
		Band2:          u.Band2.String(),
		Diag:           uint16(u.Diag),
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Diagnostics:    DiagStatus{Connected: snap.DiagConnected, Endpoint: snap.Config.DiagEndpoint},
		Filters: FiltersJSON{
			Penalty1:     filterJSON(u.Penalty1),
			Penalty2:     filterJSON(u.Penalty2),
			WarnLight:    filterJSON(u.WarnLight),
			PowerSupply1: filterJSON(u.PowerSupply1),
			PowerSupply2: filterJSON(u.PowerSupply2),
			SpeedUnder:   filterJSON(u.SpeedUnder),
			SpeedOver:    filterJSON(u.SpeedOver),
			SpeedInvalid: filterJSON(u.SpeedInvalid),
			Speed25:      filterJSON(u.Speed25),
		},
		Counts: CountsJSON{
			ModeChanges: snap.Counts.ModeChanges,
			Warnings:    snap.Counts.Warnings,
			TLAResets:   snap.Counts.TLAResets,
			Faults:      snap.Counts.Faults,
			Penalties:   snap.Counts.Penalties,
		},
		Config: ConfigJSON{
			PollMs:         snap.Config.PollMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Broker:         snap.Config.Broker,
			HTTPPort:       snap.Config.HTTPPort,
			DeadZonePolicy: snap.Config.DeadZonePolicy,
			DiagEndpoint:   snap.Config.DiagEndpoint,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
