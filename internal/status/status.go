// Package status provides a thread-safe status tracker for the cooksim
// daemon. It is written by the run loop on every tick and read by the HTTP
// handlers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/cooksim/internal/sim"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	Speed       float64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	GrainID        string
	GrainName      string
	WeightGrams    float64
	WaterLiters    float64
	RunID          string
	Running        bool
	Sample         sim.Sample
	Transformation sim.Transformation
	SeriesLen      int
	LogLen         int
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime:      startTime,
			Config:         cfg,
			Transformation: sim.TransformHydration,
		},
	}
}

// SetRun records the identity of the current run: grain, weight, water
// requirement, and run id. Called when a run starts or resets.
func (t *Tracker) SetRun(grainID, grainName string, weightGrams, waterLiters float64, runID string) {
	t.mu.Lock()
	t.snap.GrainID = grainID
	t.snap.GrainName = grainName
	t.snap.WeightGrams = weightGrams
	t.snap.WaterLiters = waterLiters
	t.snap.RunID = runID
	t.mu.Unlock()
}

// SetSample records the latest sample and derived labels.
// Called from the run loop on every tick.
func (t *Tracker) SetSample(s sim.Sample, transformation sim.Transformation, seriesLen, logLen int) {
	t.mu.Lock()
	t.snap.Sample = s
	t.snap.Transformation = transformation
	t.snap.SeriesLen = seriesLen
	t.snap.LogLen = logLen
	t.mu.Unlock()
}

// SetRunning sets whether the tick loop is scheduled.
func (t *Tracker) SetRunning(running bool) {
	t.mu.Lock()
	t.snap.Running = running
	t.mu.Unlock()
}

// SetSpeed sets the displayed speed multiplier.
func (t *Tracker) SetSpeed(speed float64) {
	t.mu.Lock()
	t.snap.Config.Speed = speed
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
