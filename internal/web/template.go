package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/cooksim/internal/status"
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
	"f1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Cooksim</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.running { color: green; font-weight: bold; }
.paused { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Cooksim<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Run</h2>
<table>
<tr><th>Grain</th><td>{{.GrainName}} ({{.GrainID}})</td></tr>
<tr><th>State</th><td class="{{if .Running}}running{{else}}paused{{end}}">{{if .Running}}running{{else}}paused{{end}}</td></tr>
<tr><th>Phase</th><td id="phase">{{.Sample.Phase}}</td></tr>
<tr><th>Transformation</th><td id="transformation">{{.Transformation}}</td></tr>
<tr><th>Elapsed</th><td id="elapsed">{{f2 .Sample.Minutes}} min</td></tr>
<tr><th>Run ID</th><td>{{.RunID}}</td></tr>
</table>

<h2>Observables</h2>
<table>
<tr><th>Moisture</th><td id="moisture">{{f1 .Sample.MoisturePct}} %</td></tr>
<tr><th>Temperature</th><td id="temp">{{f1 .Sample.Temperature}} °C</td></tr>
<tr><th>Pressure</th><td id="pressure">{{f2 .Sample.Pressure}} atm</td></tr>
<tr><th>Ultrasonic velocity</th><td id="velocity">{{f1 .Sample.UltrasonicVelocity}} m/s</td></tr>
<tr><th>Microwave power</th><td id="power">{{f1 .Sample.MicrowavePower}} %</td></tr>
<tr><th>Gelatinization</th><td id="gel">{{f1 .Sample.GelProgress}} %</td></tr>
</table>

<h2>Cook</h2>
<table>
<tr><th>Weight</th><td>{{f1 .WeightGrams}} g</td></tr>
<tr><th>Water required</th><td>{{f1 .WaterLiters}}</td></tr>
<tr><th>Speed</th><td>{{f1 .Config.Speed}}&times;</td></tr>
<tr><th>Decisions</th><td>{{.LogLen}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">status</a> · <a href="/series.json">series</a> · <a href="/log.json">log</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var fields = {
    phase: function(s) { return s.phase; },
    elapsed: function(s) { return s.t_min.toFixed(2) + " min"; },
    moisture: function(s) { return s.moisture_pct.toFixed(1) + " %"; },
    temp: function(s) { return s.temp_c.toFixed(1) + " °C"; },
    pressure: function(s) { return s.pressure_atm.toFixed(2) + " atm"; },
    velocity: function(s) { return s.velocity_ms.toFixed(1) + " m/s"; },
    power: function(s) { return s.microwave_pct.toFixed(1) + " %"; },
    gel: function(s) { return s.gel_pct.toFixed(1) + " %"; }
  };

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/live");

    ws.onopen = function() {
      dot.className = "live-dot ok";
      dot.title = "live";
    };
    ws.onclose = function() {
      dot.className = "live-dot err";
      dot.title = "disconnected";
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(msg) {
      try {
        var s = JSON.parse(msg.data);
        for (var id in fields) {
          document.getElementById(id).textContent = fields[id](s);
        }
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
