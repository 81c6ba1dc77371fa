package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/vcu-sim/internal/vcu"
)

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Tick:      12345,
		Type:      vcu.EventModeChange,
		Mode:      vcu.ModeSuppressed,
		Warning:   vcu.NoWarning,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.VCU.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.VCU.Timestamp)
	}
	if parsed.VCU.Tick != 12345 {
		t.Errorf("unexpected tick: %d", parsed.VCU.Tick)
	}
	if parsed.VCU.Event != "MODE_CHANGE" {
		t.Errorf("unexpected event: %s", parsed.VCU.Event)
	}
	if parsed.VCU.Mode != vcu.ModeSuppressed.String() {
		t.Errorf("unexpected mode: %s", parsed.VCU.Mode)
	}
}

func TestFormatPayloadFaultFields(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Tick:      500,
		Type:      vcu.EventFault,
		Mode:      vcu.ModeMajorFault,
		Warning:   vcu.NoWarning,
		Channel:   "power_supply_1",
		Counter:   vcu.FilterMax,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.VCU.Channel != "power_supply_1" {
		t.Errorf("unexpected channel: %s", parsed.VCU.Channel)
	}
	if parsed.VCU.Counter != vcu.FilterMax {
		t.Errorf("unexpected counter: %d", parsed.VCU.Counter)
	}
}

func TestFormatPayloadOmitsEmptyChannel(t *testing.T) {
	event := Event{
		Timestamp: time.Now(),
		Type:      vcu.EventWarning,
		Warning:   vcu.FirstWarning,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	inner := parsed["vcu"].(map[string]interface{})
	if _, exists := inner["channel"]; exists {
		t.Error("channel field should be omitted for non-fault events")
	}
	if _, exists := inner["counter"]; exists {
		t.Error("counter field should be omitted for non-fault events")
	}
}

func TestFromUnit(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	unitEvent := vcu.Event{
		Tick:    777,
		Type:    vcu.EventPenaltyApplied,
		Mode:    vcu.ModeNormal,
		Warning: vcu.NoWarning,
	}

	got := FromUnit(unitEvent, at)

	if !got.Timestamp.Equal(at) {
		t.Errorf("timestamp: got %v, want %v", got.Timestamp, at)
	}
	if got.Tick != 777 {
		t.Errorf("tick: got %d", got.Tick)
	}
	if got.Type != vcu.EventPenaltyApplied {
		t.Errorf("type: got %s", got.Type)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	event := Event{
		Timestamp: time.Now(),
		Type:      vcu.EventModeChange,
		Mode:      vcu.ModeNormal,
	}

	err := f.Publish(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}

	if f.Events[0].Type != vcu.EventModeChange {
		t.Errorf("unexpected event type: %s", f.Events[0].Type)
	}

	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")

	err := f.Publish(Event{Timestamp: time.Now(), Type: vcu.EventWarning})
	if err == nil {
		t.Error("expected error")
	}

	if len(f.Events) != 0 {
		t.Errorf("expected no events recorded on error, got %d", len(f.Events))
	}
}

func TestFakePublisherClose(t *testing.T) {
	f := NewFakePublisher()

	if f.Closed {
		t.Error("should not be closed initially")
	}

	err := f.Close()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()

	f.Publish(Event{Timestamp: time.Now(), Type: vcu.EventModeChange})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "SHUTDOWN", Reason: "SIGTERM"})
	f.Close()
	f.PublishError = errors.New("error")

	f.Reset()

	if len(f.Events) != 0 {
		t.Error("events should be cleared")
	}
	if len(f.Payloads) != 0 {
		t.Error("payloads should be cleared")
	}
	if len(f.SystemEvents) != 0 {
		t.Error("system events should be cleared")
	}
	if f.Closed {
		t.Error("closed should be reset")
	}
	if f.PublishError != nil {
		t.Error("error should be cleared")
	}
}

func TestTopic(t *testing.T) {
	expected := "railway/vcu/events"
	if Topic != expected {
		t.Errorf("unexpected topic: got %s, want %s", Topic, expected)
	}
}

func TestTopicSystem(t *testing.T) {
	expected := "railway/vcu/system"
	if TopicSystem != expected {
		t.Errorf("unexpected system topic: got %s, want %s", TopicSystem, expected)
	}
}

func TestFormatSystemPayloadShutdown(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadStartup(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 19, 5, 51, 0, time.UTC),
		Event:     "STARTUP",
		Config: &SystemConfig{
			PollMs:         10,
			HeartbeatMs:    900000,
			Broker:         "tcp://192.168.1.200:1883",
			DeadZonePolicy: "strict",
		},
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Event != "STARTUP" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "" {
		t.Errorf("expected empty reason for startup, got: %s", parsed.System.Reason)
	}
	if parsed.System.Config == nil {
		t.Fatal("expected config to be present")
	}
	if parsed.System.Config.PollMs != 10 {
		t.Errorf("unexpected poll_ms: %d", parsed.System.Config.PollMs)
	}
	if parsed.System.Config.DeadZonePolicy != "strict" {
		t.Errorf("unexpected dead_zone_policy: %s", parsed.System.Config.DeadZonePolicy)
	}
}

func TestFormatSystemPayloadHeartbeat(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 4, 12, 15, 0, 0, time.UTC),
		Event:     "HEARTBEAT",
		Heartbeat: &HeartbeatInfo{
			UptimeSeconds: 900,
			EventCounts: HeartbeatCounts{
				ModeChanges: 3,
				Warnings:    7,
				TLAResets:   12,
				Faults:      1,
				Penalties:   0,
			},
		},
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Heartbeat == nil {
		t.Fatal("expected heartbeat to be present")
	}
	if parsed.System.Heartbeat.UptimeSeconds != 900 {
		t.Errorf("unexpected uptime_seconds: %d", parsed.System.Heartbeat.UptimeSeconds)
	}
	if parsed.System.Heartbeat.EventCounts.TLAResets != 12 {
		t.Errorf("unexpected tla_resets: %d", parsed.System.Heartbeat.EventCounts.TLAResets)
	}
}

func TestFormatSystemPayloadOmitsEmptySections(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 4, 12, 15, 0, 0, time.UTC),
		Event:     "HEARTBEAT",
		Heartbeat: &HeartbeatInfo{UptimeSeconds: 60},
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	system := parsed["system"].(map[string]interface{})
	if _, exists := system["reason"]; exists {
		t.Error("reason field should be omitted for heartbeat events")
	}
	if _, exists := system["config"]; exists {
		t.Error("config field should be omitted for heartbeat events")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"system":{"custom":true}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	event := SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	err := f.PublishSystem(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.SystemEvents))
	}

	if f.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", f.SystemEvents[0].Event)
	}
	if f.SystemEvents[0].Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", f.SystemEvents[0].Reason)
	}

	if len(f.SystemPayloads) != 1 {
		t.Fatalf("expected 1 system payload, got %d", len(f.SystemPayloads))
	}
}

func TestFakePublisherRecordsRetainedFlag(t *testing.T) {
	f := NewFakePublisher()

	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT", Retained: false})

	if len(f.SystemEvents) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(f.SystemEvents))
	}
	if !f.SystemEvents[0].Retained {
		t.Error("first event should have Retained=true")
	}
	if f.SystemEvents[1].Retained {
		t.Error("second event should have Retained=false")
	}
}

func TestFakePublisherPreservesEventOrder(t *testing.T) {
	f := NewFakePublisher()

	types := []vcu.EventType{
		vcu.EventModeChange,
		vcu.EventWarning,
		vcu.EventTLAReset,
		vcu.EventPenaltyApplied,
	}

	for _, typ := range types {
		f.Publish(Event{Timestamp: time.Now(), Type: typ})
	}

	if len(f.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(f.Events))
	}

	for i, typ := range types {
		if f.Events[i].Type != typ {
			t.Errorf("event %d: expected %s, got %s", i, typ, f.Events[i].Type)
		}
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	localTime := time.Date(2026, 2, 3, 10, 30, 0, 0, loc) // 10:30 EST = 15:30 UTC

	payload, err := FormatPayload(Event{Timestamp: localTime, Type: vcu.EventWarning})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.VCU.Timestamp != "2026-02-03T15:30:00Z" {
		t.Errorf("expected UTC timestamp 2026-02-03T15:30:00Z, got %s", parsed.VCU.Timestamp)
	}
}

// Interface compliance at compile time.
var _ Publisher = (*FakePublisher)(nil)
var _ ConnectionStatus = (*FakePublisher)(nil)
