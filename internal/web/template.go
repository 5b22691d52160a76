package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/dht-display/internal/app"
	"github.com/sweeney/dht-display/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="30">
<title>DHT Display</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.reading { font-size: 1.3em; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>DHT Display</h1>

<h2>Reading</h2>
<table>
<tr><th>Temperature</th><td id="temp" class="{{if .Reading.Valid}}reading{{else}}unknown{{end}}">{{.Temp}}</td></tr>
<tr><th>Humidity</th><td id="hum" class="{{if .Reading.Valid}}reading{{else}}unknown{{end}}">{{.Hum}}</td></tr>
</table>

<h2>Display</h2>
<table>
<tr><th>State</th><td id="state">{{if .Ready}}{{.State}}{{else}}UNKNOWN{{end}}</td></tr>
<tr><th>Unit</th><td>{{.State.Unit}}</td></tr>
<tr><th>Backlight</th><td>{{if .State.Backlit}}on{{else}}off{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Samples</th><td>{{.Counts.Samples}}</td></tr>
<tr><th>Sample failures</th><td>{{.Counts.SampleFailures}}</td></tr>
<tr><th>Unit changes</th><td>{{.Counts.UnitChanges}}</td></tr>
<tr><th>Backlight off</th><td>{{.Counts.BacklightOff}}</td></tr>
<tr><th>Backlight on</th><td>{{.Counts.BacklightOn}}</td></tr>
<tr><th>Errors</th><td>{{.Counts.Errors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Sensor</th><td>{{.Config.Sensor}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Resample</th><td>{{.Config.ResampleMs}}ms</td></tr>
<tr><th>Backlight timeout</th><td>{{.Config.BacklightMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	temp, hum := app.FormatLines(snap.Reading, snap.State.Unit())
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Temp   string
		Hum    string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Temp:     temp,
		Hum:      hum,
	}
	indexTmpl.Execute(w, data)
}
