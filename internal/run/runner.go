// Package run drives the simulation engine from a periodic tick. The runner
// owns the elapsed process clock, the latch state, and the sample series;
// the engine itself stays pure. One runner exists per daemon and at most one
// run is active at a time.
package run

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/cooksim/internal/declog"
	"github.com/sweeney/cooksim/internal/grain"
	"github.com/sweeney/cooksim/internal/mqtt"
	"github.com/sweeney/cooksim/internal/sim"
	"github.com/sweeney/cooksim/internal/status"
)

// Streamer receives each sample as it is produced (e.g. a websocket hub).
type Streamer interface {
	StreamSample(s sim.Sample)
}

// Config wires a Runner to its collaborators. Publisher, MQTT, and Stream
// may be nil.
type Config struct {
	Registry  *grain.Registry
	Log       *declog.Log
	Tracker   *status.Tracker
	Publisher mqtt.Publisher
	MQTT      mqtt.ConnectionStatus
	Stream    Streamer

	GrainID     string
	WeightGrams float64

	// Period is the wall-clock tick interval; Speed is the multiplier
	// applied to it to produce simulated seconds per tick.
	Period time.Duration
	Speed  float64

	// Heartbeat is the interval for HEARTBEAT system events (0 disables).
	Heartbeat time.Duration

	// Now is the wall clock; defaults to time.Now.
	Now func() time.Time
}

// Runner advances a simulation run one engine step per tick.
type Runner struct {
	mu sync.Mutex

	reg       *grain.Registry
	declog    *declog.Log
	tracker   *status.Tracker
	publisher mqtt.Publisher
	mqttConn  mqtt.ConnectionStatus
	stream    Streamer

	period    time.Duration
	speed     float64
	heartbeat time.Duration
	now       func() time.Time

	grainID string
	profile grain.Profile
	weight  float64
	water   float64
	engine  *sim.Engine

	runID         string
	elapsed       float64 // simulated seconds
	latch         sim.LatchState
	series        []sim.Sample
	running       bool
	stopCh        chan struct{}
	doneCh        chan struct{}
	lastHeartbeat time.Time
}

// NewRunner resolves the grain and weight and prepares a run at t=0.
// Fails fast on unknown grain ids, invalid weight, or invalid speed.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Speed <= 0 {
		return nil, fmt.Errorf("speed multiplier %.2f: must be positive", cfg.Speed)
	}
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("tick period %v: must be positive", cfg.Period)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := &Runner{
		reg:       cfg.Registry,
		declog:    cfg.Log,
		tracker:   cfg.Tracker,
		publisher: cfg.Publisher,
		mqttConn:  cfg.MQTT,
		stream:    cfg.Stream,
		period:    cfg.Period,
		speed:     cfg.Speed,
		heartbeat: cfg.Heartbeat,
		now:       cfg.Now,
	}
	if err := r.bindGrain(cfg.GrainID, cfg.WeightGrams); err != nil {
		return nil, err
	}
	return r, nil
}

// bindGrain resolves the profile, validates the weight, and rewinds the run.
// Caller must not hold the mutex.
func (r *Runner) bindGrain(id string, grams float64) error {
	profile, err := r.reg.Lookup(id)
	if err != nil {
		return err
	}
	water, err := r.reg.WaterRequired(id, grams)
	if err != nil {
		return err
	}
	engine, err := sim.New(profile)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.grainID = id
	r.profile = profile
	r.weight = grams
	r.water = water
	r.engine = engine
	r.mu.Unlock()

	r.rewind()
	return nil
}

// rewind clears the series, the decision log, and the latches, rewinds the
// elapsed clock to zero, and starts a fresh run id.
func (r *Runner) rewind() {
	r.mu.Lock()
	r.elapsed = 0
	r.latch = sim.LatchState{}
	r.series = nil
	r.runID = uuid.New().String()
	r.lastHeartbeat = r.now()
	id, name, weight, water, runID := r.grainID, r.profile.Name, r.weight, r.water, r.runID
	r.mu.Unlock()

	r.declog.Clear()
	if r.tracker != nil {
		r.tracker.SetRun(id, name, weight, water, runID)
		r.tracker.SetSample(sim.Sample{Phase: sim.PhaseMicrowave}, sim.TransformHydration, 0, 0)
	}
}

// Start schedules the tick loop. No-op if already running.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	r.stopCh = stop
	r.doneCh = done
	r.running = true
	period := r.period
	r.mu.Unlock()

	if r.tracker != nil {
		r.tracker.SetRunning(true)
	}

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		r.loop(ticker.C, stop, done)

		r.mu.Lock()
		r.running = false
		r.stopCh = nil
		r.mu.Unlock()
		if r.tracker != nil {
			r.tracker.SetRunning(false)
		}
	}()
}

// loop consumes ticks until stopped, the run finishes, or the engine fails.
func (r *Runner) loop(tick <-chan time.Time, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return

		case <-tick:
			finished, err := r.step(r.now())
			if err != nil {
				log.Printf("engine error, halting run: %v", err)
				return
			}
			if finished {
				r.publishRunComplete()
				return
			}
		}
	}
}

// Pause stops scheduling further ticks without discarding run state.
// Resume by calling Start again. Blocks until the loop has exited.
func (r *Runner) Pause() {
	r.mu.Lock()
	if !r.running || r.stopCh == nil {
		r.mu.Unlock()
		return
	}
	stop, done := r.stopCh, r.doneCh
	r.stopCh = nil
	r.mu.Unlock()

	close(stop)
	<-done
}

// Reset cancels scheduling first, then atomically clears the series, the
// decision log, and all latches, and rewinds elapsed time to zero.
func (r *Runner) Reset() {
	r.Pause()
	r.rewind()
}

// SelectGrain switches to a different grain. If a run is active this implies
// a reset: the per-grain cook duration and thresholds must not change
// mid-run. The loop is restarted from t=0 when it was running.
func (r *Runner) SelectGrain(id string) error {
	r.mu.Lock()
	wasRunning := r.running
	grams := r.weight
	r.mu.Unlock()

	r.Pause()
	if err := r.bindGrain(id, grams); err != nil {
		return err
	}
	if wasRunning {
		r.Start()
	}
	return nil
}

// SetWeight updates the grain weight and the reported water requirement.
// The physical model does not depend on weight, so the run continues.
func (r *Runner) SetWeight(grams float64) error {
	r.mu.Lock()
	id := r.grainID
	r.mu.Unlock()

	water, err := r.reg.WaterRequired(id, grams)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.weight = grams
	r.water = water
	name, runID := r.profile.Name, r.runID
	r.mu.Unlock()

	if r.tracker != nil {
		r.tracker.SetRun(id, name, grams, water, runID)
	}
	return nil
}

// SetSpeed updates the simulated-seconds-per-tick multiplier. The engine is
// multiplier-agnostic, so this is safe mid-run.
func (r *Runner) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("speed multiplier %.2f: must be positive", speed)
	}
	r.mu.Lock()
	r.speed = speed
	r.mu.Unlock()

	if r.tracker != nil {
		r.tracker.SetSpeed(speed)
	}
	return nil
}

// Running reports whether the tick loop is scheduled.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// RunID returns the current run id.
func (r *Runner) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}

// WaterRequired returns the recommended water volume for the current grain
// and weight.
func (r *Runner) WaterRequired() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.water
}

// Series returns a copy of the accumulated sample series.
func (r *Runner) Series() []sim.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sim.Sample, len(r.series))
	copy(out, r.series)
	return out
}

// step runs one engine tick: sample at the current elapsed time, forward
// events, advance the clock. Returns true once the final instant of the cook
// has been sampled.
func (r *Runner) step(now time.Time) (bool, error) {
	r.mu.Lock()
	t := r.elapsed
	sample, events, latch, err := r.engine.Step(t, r.latch)
	if err != nil {
		r.mu.Unlock()
		return false, err
	}
	r.latch = latch
	r.series = append(r.series, sample)
	seriesLen := len(r.series)

	cook := r.engine.CookSeconds()
	next := t + r.period.Seconds()*r.speed
	if next > cook {
		next = cook
	}
	r.elapsed = next
	finished := t >= cook

	grainID, runID := r.grainID, r.runID
	r.mu.Unlock()

	for _, ev := range events {
		if !r.declog.Record(ev.Minutes, ev.Message) {
			continue
		}
		log.Printf("decision: t=%.2fmin %s", ev.Minutes, ev.Message)
		if r.publisher != nil {
			if err := r.publisher.PublishDecision(mqtt.DecisionEvent{
				Minutes: ev.Minutes,
				Message: ev.Message,
				Grain:   grainID,
				RunID:   runID,
			}); err != nil {
				log.Printf("publish error: %v", err)
				// Don't halt the run on publish failure
			}
		}
	}

	if r.stream != nil {
		r.stream.StreamSample(sample)
	}

	if r.tracker != nil {
		r.tracker.SetSample(sample, sim.Classify(sample.GelProgress), seriesLen, r.declog.Len())
		if r.mqttConn != nil {
			r.tracker.SetMQTTConnected(r.mqttConn.IsConnected())
		}
	}

	r.checkHeartbeat(now)

	return finished, nil
}

// checkHeartbeat publishes a HEARTBEAT system event with a full status
// snapshot when the interval has elapsed.
func (r *Runner) checkHeartbeat(now time.Time) {
	r.mu.Lock()
	if r.heartbeat <= 0 || now.Sub(r.lastHeartbeat) < r.heartbeat {
		r.mu.Unlock()
		return
	}
	r.lastHeartbeat = now
	r.mu.Unlock()

	if r.publisher == nil {
		return
	}
	event := mqtt.SystemEvent{Timestamp: now, Event: "HEARTBEAT"}
	if r.tracker != nil {
		event.RawPayload = status.FormatStatusEvent(r.tracker.Snapshot(), "HEARTBEAT", "")
	}
	if err := r.publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (r *Runner) publishRunComplete() {
	r.mu.Lock()
	minutes := r.profile.CookMinutes
	name := r.profile.Name
	r.mu.Unlock()

	log.Printf("run complete: %s after %.1f min", name, minutes)
	if r.publisher == nil {
		return
	}
	event := mqtt.SystemEvent{Timestamp: r.now(), Event: "RUN_COMPLETE", Retained: true}
	if r.tracker != nil {
		event.RawPayload = status.FormatStatusEvent(r.tracker.Snapshot(), "RUN_COMPLETE", "")
	}
	if err := r.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish run-complete event: %v", err)
	}
}
