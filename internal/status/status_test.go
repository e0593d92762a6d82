package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/cooksim/internal/sim"
)

func testConfig() Config {
	return Config{
		TickMs:      100,
		Speed:       10,
		HeartbeatMs: 60000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.TickMs != 100 {
		t.Errorf("Config.TickMs: got %d, want 100", snap.Config.TickMs)
	}
	if snap.Transformation != sim.TransformHydration {
		t.Errorf("initial transformation: got %q", snap.Transformation)
	}
	if snap.Running {
		t.Error("new tracker should not be running")
	}
}

func TestSetRunAndSample(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	tr.SetRun("basmati_rice", "Basmati Rice", 150, 270, "run-42")
	sample := sim.Sample{
		Minutes:     4.5,
		Temperature: 83,
		Phase:       sim.PhaseTransfer,
		GelProgress: 60,
	}
	tr.SetSample(sample, sim.TransformGelComplete, 55, 4)
	tr.SetRunning(true)

	snap := tr.Snapshot()
	if snap.GrainID != "basmati_rice" || snap.GrainName != "Basmati Rice" {
		t.Errorf("grain: got %q/%q", snap.GrainID, snap.GrainName)
	}
	if snap.WeightGrams != 150 || snap.WaterLiters != 270 {
		t.Errorf("weight/water: got %v/%v", snap.WeightGrams, snap.WaterLiters)
	}
	if snap.RunID != "run-42" {
		t.Errorf("run id: got %q", snap.RunID)
	}
	if snap.Sample != sample {
		t.Errorf("sample: got %+v", snap.Sample)
	}
	if snap.Transformation != sim.TransformGelComplete {
		t.Errorf("transformation: got %q", snap.Transformation)
	}
	if snap.SeriesLen != 55 || snap.LogLen != 4 {
		t.Errorf("lengths: got %d/%d", snap.SeriesLen, snap.LogLen)
	}
	if !snap.Running {
		t.Error("expected running")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	tr.SetSample(sim.Sample{Minutes: 1}, sim.TransformHydration, 1, 0)

	snap := tr.Snapshot()
	tr.SetSample(sim.Sample{Minutes: 2}, sim.TransformGelOnset, 2, 0)

	if snap.Sample.Minutes != 1 {
		t.Errorf("snapshot mutated: got %v", snap.Sample.Minutes)
	}
}

func TestUptime(t *testing.T) {
	start := time.Now().Add(-90 * time.Second)
	tr := NewTracker(start, testConfig())

	up := tr.Snapshot().Uptime()
	if up < 89*time.Second || up > 92*time.Second {
		t.Errorf("uptime: got %v, want ~90s", up)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())
	tr.SetRun("quinoa", "Quinoa", 100, 200, "run-7")
	tr.SetSample(sim.Sample{
		Minutes:            2.8833333,
		MoisturePct:        31.456,
		Temperature:        61.949,
		Pressure:           1,
		UltrasonicVelocity: 1576.6,
		MicrowavePower:     65.6,
		GelProgress:        0,
		Phase:              sim.PhaseMicrowave,
	}, sim.TransformHydration, 10, 2)
	tr.SetMQTTConnected(true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if sj.Status.Grain != "quinoa" {
		t.Errorf("grain: got %q", sj.Status.Grain)
	}
	if sj.Status.Sample.Minutes != 2.88 {
		t.Errorf("t_min not rounded to two decimals: got %v", sj.Status.Sample.Minutes)
	}
	if sj.Status.Sample.Temperature != 61.95 {
		t.Errorf("temp_c: got %v", sj.Status.Sample.Temperature)
	}
	if sj.Status.Sample.Phase != "MICROWAVE" {
		t.Errorf("phase: got %q", sj.Status.Sample.Phase)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected mqtt connected")
	}
	if sj.Status.Event != "" {
		t.Errorf("web JSON should carry no event, got %q", sj.Status.Event)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	var sj StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", sj.Status.Reason)
	}
}
