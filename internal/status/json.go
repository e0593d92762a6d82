package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string     `json:"event,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Grain          string     `json:"grain"`
	GrainName      string     `json:"grain_name"`
	RunID          string     `json:"run_id"`
	Running        bool       `json:"running"`
	WeightGrams    float64    `json:"weight_g"`
	WaterLiters    float64    `json:"water_l"`
	Sample         SampleJSON `json:"sample"`
	Transformation string     `json:"transformation"`
	SeriesLen      int        `json:"series_len"`
	LogLen         int        `json:"log_len"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	StartTime      string     `json:"start_time"`
	Timestamp      string     `json:"timestamp"`
	MQTT           MQTTStatus `json:"mqtt"`
	Config         ConfigJSON `json:"config"`
}

// SampleJSON is the JSON representation of a simulation sample. Elapsed time
// is reported in minutes to two decimals.
type SampleJSON struct {
	Minutes     float64 `json:"t_min"`
	MoisturePct float64 `json:"moisture_pct"`
	Temperature float64 `json:"temp_c"`
	Pressure    float64 `json:"pressure_atm"`
	Velocity    float64 `json:"velocity_ms"`
	Power       float64 `json:"microwave_pct"`
	GelProgress float64 `json:"gel_pct"`
	Phase       string  `json:"phase"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64   `json:"tick_ms"`
	Speed       float64 `json:"speed"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	Broker      string  `json:"broker"`
	HTTPAddr    string  `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Grain:          snap.GrainID,
		GrainName:      snap.GrainName,
		RunID:          snap.RunID,
		Running:        snap.Running,
		WeightGrams:    snap.WeightGrams,
		WaterLiters:    snap.WaterLiters,
		Sample:         buildSample(snap),
		Transformation: string(snap.Transformation),
		SeriesLen:      snap.SeriesLen,
		LogLen:         snap.LogLen,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			Speed:       snap.Config.Speed,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

func buildSample(snap Snapshot) SampleJSON {
	s := snap.Sample
	return SampleJSON{
		Minutes:     round2(s.Minutes),
		MoisturePct: round2(s.MoisturePct),
		Temperature: round2(s.Temperature),
		Pressure:    round2(s.Pressure),
		Velocity:    round2(s.UltrasonicVelocity),
		Power:       round2(s.MicrowavePower),
		GelProgress: round2(s.GelProgress),
		Phase:       string(s.Phase),
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
