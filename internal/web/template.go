package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/vcu-sim/internal/status"
	"github.com/sweeney/vcu-sim/internal/vcu"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"timerSeconds": func(ticks int) string {
		return fmt.Sprintf("%.1fs", float64(ticks)*0.0005)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>VCU Simulator</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.warn { color: orange; font-weight: bold; }
.fault { color: red; font-weight: bold; }
.idle { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Vigilance Control Unit</h1>

<h2>Unit</h2>
<table>
<tr><th>Mode</th><td class="{{if eq .Unit.Mode.String "MAJOR_FAULT"}}fault{{else if eq .Unit.Mode.String "NORMAL"}}ok{{else}}warn{{end}}">{{.Unit.Mode}}</td></tr>
<tr><th>Warning</th><td class="{{if eq .Unit.Warning.String "NO_WARNING"}}idle{{else}}warn{{end}}">{{.Unit.Warning}}</td></tr>
<tr><th>Timer</th><td>{{timerSeconds .Unit.TimerRemaining}}</td></tr>
<tr><th>Penalty</th><td class="{{if .Unit.PenaltyApplied}}fault{{else}}idle{{end}}">{{if .Unit.PenaltyApplied}}APPLIED{{else}}released{{end}}</td></tr>
<tr><th>Demand Band 1</th><td>{{.Unit.Band1}}</td></tr>
<tr><th>Demand Band 2</th><td>{{.Unit.Band2}}</td></tr>
<tr><th>No Power</th><td>{{if .Unit.NoPower}}yes{{else}}no{{end}}</td></tr>
<tr><th>Tick</th><td>{{.Unit.Tick}}</td></tr>
</table>

<h2>Fault Filters</h2>
<table>
{{range .Filters}}<tr><th>{{.Name}}</th><td class="{{if .Confirmed}}fault{{else if .Count}}warn{{else}}idle{{end}}">{{.Count}}/{{.Max}}{{if .Confirmed}} CONFIRMED{{end}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Config.DiagEndpoint}}<tr><th>Recorder</th><td class="{{if .DiagConnected}}connected{{else}}disconnected{{end}}">{{if .DiagConnected}}connected{{else}}disconnected{{end}} ({{.Config.DiagEndpoint}})</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Mode changes</th><td>{{.Counts.ModeChanges}}</td></tr>
<tr><th>Warnings</th><td>{{.Counts.Warnings}}</td></tr>
<tr><th>TLA resets</th><td>{{.Counts.TLAResets}}</td></tr>
<tr><th>Faults</th><td>{{.Counts.Faults}}</td></tr>
<tr><th>Penalties</th><td>{{.Counts.Penalties}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Dead zone</th><td>{{.Config.DeadZonePolicy}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// filterRow is one fault filter line on the status page.
type filterRow struct {
	Name      string
	Count     int
	Max       int
	Confirmed bool
}

func filterRows(u vcu.Snapshot) []filterRow {
	rows := []struct {
		name string
		fs   vcu.FilterStatus
	}{
		{"penalty_1", u.Penalty1},
		{"penalty_2", u.Penalty2},
		{"warn_light", u.WarnLight},
		{"power_supply_1", u.PowerSupply1},
		{"power_supply_2", u.PowerSupply2},
		{"speed_under_range", u.SpeedUnder},
		{"speed_over_range", u.SpeedOver},
		{"speed_invalid", u.SpeedInvalid},
		{"speed_25_range", u.Speed25},
	}

	out := make([]filterRow, len(rows))
	for i, r := range rows {
		out[i] = filterRow{Name: r.name, Count: r.fs.Count, Max: vcu.FilterMax, Confirmed: r.fs.Confirmed}
	}
	return out
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Filters []filterRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Filters:  filterRows(snap.Unit),
	}
	indexTmpl.Execute(w, data)
}
