// Command vcu-sim runs a discrete-time vigilance control unit against GPIO
// inputs, publishing unit events to MQTT and mirroring diagnostics to a
// train event recorder.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/vcu-sim/internal/config"
	"github.com/sweeney/vcu-sim/internal/diag"
	"github.com/sweeney/vcu-sim/internal/gpio"
	"github.com/sweeney/vcu-sim/internal/mqtt"
	"github.com/sweeney/vcu-sim/internal/status"
	"github.com/sweeney/vcu-sim/internal/vcu"
	"github.com/sweeney/vcu-sim/internal/web"
)

// tickInterval is the base simulation tick. Each poll advances the unit
// by poll/tickInterval ticks with the sampled frame held constant.
const tickInterval = 500 * time.Microsecond

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (empty for defaults)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config)")
	poll := flag.Int("poll", 0, "GPIO polling interval in ms (overrides config)")
	heartbeat := flag.Int("heartbeat", -1, "Heartbeat interval in ms, 0 disables (overrides config)")
	printState := flag.Bool("print-state", false, "Print current input frame and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *broker != "" {
		cfg.VCU.Broker = *broker
	}
	if *httpAddr != "" {
		cfg.VCU.HTTP = *httpAddr
	}
	if *poll > 0 {
		cfg.VCU.PollMs = *poll
	}
	if *heartbeat >= 0 {
		cfg.VCU.HeartbeatMs = *heartbeat
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, printState bool) error {
	reader, err := gpio.NewRealReader(gpioPins(cfg.VCU.Pins))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	if printState {
		frame, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		printFrame(frame)
		return nil
	}

	publisher, err := mqtt.NewRealPublisher(cfg.VCU.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	var diagWriter diag.Writer
	if cfg.VCU.Diag.Endpoint != "" {
		diagWriter, err = diag.NewModbusWriter(diag.Config{
			Endpoint:        cfg.VCU.Diag.Endpoint,
			UnitID:          cfg.VCU.Diag.UnitID,
			CoilAddress:     cfg.VCU.Diag.CoilAddress,
			RegisterAddress: cfg.VCU.Diag.RegisterAddress,
			Timeout:         time.Duration(cfg.VCU.Diag.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			// The recorder is an auxiliary sink; the unit runs without it.
			log.Printf("diag recorder unavailable: %v", err)
			diagWriter = nil
		} else {
			defer diagWriter.Close()
		}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:         cfg.VCU.PollMs,
		HeartbeatMs:    cfg.VCU.HeartbeatMs,
		Broker:         cfg.VCU.Broker,
		HTTPPort:       cfg.VCU.HTTP,
		DeadZonePolicy: cfg.VCU.PWM.DeadZonePolicy,
		DiagEndpoint:   cfg.VCU.Diag.Endpoint,
	})
	tracker.SetDiagConnected(diagWriter != nil)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.VCU.HTTP != "" {
		srv := web.New(cfg.VCU.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.VCU.HTTP)
	}

	pollInterval := time.Duration(cfg.VCU.PollMs) * time.Millisecond
	heartbeat := time.Duration(cfg.VCU.HeartbeatMs) * time.Millisecond
	log.Printf("started: poll=%v broker=%s heartbeat=%v dead_zone=%s",
		pollInterval, cfg.VCU.Broker, heartbeat, cfg.VCU.PWM.DeadZonePolicy)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	unit := vcu.NewUnit(cfg.VCU.Params())
	stepsPerPoll := int(pollInterval / tickInterval)

	return runLoop(reader, publisher, publisher, diagWriter, tracker, unit, stepsPerPoll, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(reader gpio.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, diagWriter diag.Writer, tracker *status.Tracker, unit *vcu.Unit, stepsPerPoll int, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	if stepsPerPoll < 1 {
		stepsPerPoll = 1
	}

	startTime := now()
	lastHeartbeat := startTime
	var counts status.EventCounts
	var lastRecord diag.Record
	haveRecord := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			frame, err := reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			// Zero-order hold: the sampled frame feeds every tick until
			// the next poll.
			in := frameInputs(frame)
			for i := 0; i < stepsPerPoll; i++ {
				for _, event := range unit.Step(in) {
					countEvent(&counts, event)
					log.Printf("event: %s (mode=%s warning=%s)", event.Type, event.Mode, event.Warning)
					if err := publisher.Publish(mqtt.FromUnit(event, t)); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			snap := unit.Snapshot()

			if diagWriter != nil {
				rec := diag.Record{
					Bits:           snap.Diag,
					Mode:           snap.Mode,
					Warning:        snap.Warning,
					TimerRemaining: snap.TimerRemaining,
				}
				// The timer decrements every tick; gate on the bits and
				// states so the recorder sees transitions, not noise.
				if !haveRecord || rec.Bits != lastRecord.Bits || rec.Mode != lastRecord.Mode || rec.Warning != lastRecord.Warning {
					if err := diagWriter.Write(rec); err != nil {
						log.Printf("diag write error: %v", err)
					}
					lastRecord = rec
					haveRecord = true
				}
			}

			if tracker != nil {
				tracker.Update(snap, counts)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				uptime := t.Sub(startTime)
				log.Printf("heartbeat: uptime=%v mode_changes=%d warnings=%d tla_resets=%d faults=%d penalties=%d",
					uptime.Truncate(time.Second), counts.ModeChanges, counts.Warnings, counts.TLAResets, counts.Faults, counts.Penalties)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					trackerSnap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(trackerSnap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func countEvent(counts *status.EventCounts, event vcu.Event) {
	switch event.Type {
	case vcu.EventModeChange:
		counts.ModeChanges++
	case vcu.EventWarning:
		counts.Warnings++
	case vcu.EventTLAReset:
		counts.TLAResets++
	case vcu.EventFault:
		counts.Faults++
	case vcu.EventPenaltyApplied:
		counts.Penalties++
	}
}

// frameInputs converts a sampled GPIO frame into one unit input frame.
func frameInputs(f gpio.Frame) vcu.Inputs {
	return vcu.Inputs{
		Horn:            f.Horn,
		Wiper:           f.Wiper,
		Headlight:       f.Headlight,
		BypassAck:       f.BypassAck,
		VigilanceButton: f.VigilanceButton,

		CabActive:  f.CabActive,
		ZeroSpeed:  f.ZeroSpeed,
		Driverless: f.Driverless,
		CBTC:       f.CBTC,

		PowerSupply1Fault: f.PowerSupply1Fault,
		PowerSupply2Fault: f.PowerSupply2Fault,
		SpeedUnderRange:   f.SpeedUnderRange,
		SpeedOverRange:    f.SpeedOverRange,
		SpeedInvalid:      f.SpeedInvalid,
		Speed25Fault:      f.Speed25Fault,

		Duty1: f.Duty1,
		Duty2: f.Duty2,

		Penalty1Feedback:  f.Penalty1Feedback,
		Penalty2Feedback:  f.Penalty2Feedback,
		WarnLightFeedback: f.WarnLightFeedback,
	}
}

func gpioPins(p config.PinsConfig) gpio.Pins {
	return gpio.Pins{
		Horn:            p.Horn,
		Wiper:           p.Wiper,
		Headlight:       p.Headlight,
		BypassAck:       p.BypassAck,
		VigilanceButton: p.VigilanceButton,

		CabActive:  p.CabActive,
		ZeroSpeed:  p.ZeroSpeed,
		Driverless: p.Driverless,
		CBTC:       p.CBTC,

		PowerSupply1: p.PowerSupply1,
		PowerSupply2: p.PowerSupply2,
		SpeedUnder:   p.SpeedUnder,
		SpeedOver:    p.SpeedOver,
		SpeedInvalid: p.SpeedInvalid,
		Speed25:      p.Speed25,

		PWM1: p.PWM1,
		PWM2: p.PWM2,

		Penalty1Feedback:  p.Penalty1Feedback,
		Penalty2Feedback:  p.Penalty2Feedback,
		WarnLightFeedback: p.WarnLightFeedback,
	}
}

func printFrame(f gpio.Frame) {
	fmt.Printf("horn=%v wiper=%v headlight=%v bypass_ack=%v vigilance_button=%v\n",
		f.Horn, f.Wiper, f.Headlight, f.BypassAck, f.VigilanceButton)
	fmt.Printf("cab_active=%v zero_speed=%v driverless=%v cbtc=%v\n",
		f.CabActive, f.ZeroSpeed, f.Driverless, f.CBTC)
	fmt.Printf("power_supply_1=%v power_supply_2=%v\n", f.PowerSupply1Fault, f.PowerSupply2Fault)
	fmt.Printf("speed: under=%v over=%v invalid=%v 25=%v\n",
		f.SpeedUnderRange, f.SpeedOverRange, f.SpeedInvalid, f.Speed25Fault)
	fmt.Printf("duty_1=%.2f%% duty_2=%.2f%%\n", f.Duty1, f.Duty2)
	fmt.Printf("feedback: penalty_1=%v penalty_2=%v warn_light=%v\n",
		f.Penalty1Feedback, f.Penalty2Feedback, f.WarnLightFeedback)
}
