package web

import (
	"encoding/json"
	"math"

	"github.com/sweeney/cooksim/internal/declog"
	"github.com/sweeney/cooksim/internal/sim"
)

// SeriesJSON is the JSON envelope for the sample series.
type SeriesJSON struct {
	Samples []SampleJSON `json:"samples"`
}

// SampleJSON is one sample; elapsed time in minutes to two decimals.
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

// LogJSON is the JSON envelope for the decision log.
type LogJSON struct {
	Entries []LogEntryJSON `json:"entries"`
}

// LogEntryJSON is one decision-log entry.
type LogEntryJSON struct {
	Minutes float64 `json:"t_min"`
	Message string  `json:"message"`
}

func sampleJSON(s sim.Sample) SampleJSON {
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

func formatSeriesJSON(samples []sim.Sample) []byte {
	out := SeriesJSON{Samples: make([]SampleJSON, len(samples))}
	for i, s := range samples {
		out.Samples[i] = sampleJSON(s)
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return data
}

func formatLogJSON(entries []declog.Entry) []byte {
	out := LogJSON{Entries: make([]LogEntryJSON, len(entries))}
	for i, e := range entries {
		out.Entries[i] = LogEntryJSON{Minutes: round2(e.Minutes), Message: e.Message}
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return data
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
