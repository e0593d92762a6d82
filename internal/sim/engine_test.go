package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/cooksim/internal/grain"
)

// basmatiProfile matches the built-in basmati profile: 10 min cook, moisture
// 12 -> 65, gelatinization 62/68 °C.
func basmatiProfile() grain.Profile {
	return grain.Profile{
		Name:            "Basmati Rice",
		StarchPct:       78.2,
		ProteinPct:      8.1,
		AmylosePct:      22.0,
		AmylopectinPct:  56.2,
		InitialMoisture: 12,
		TargetMoisture:  65,
		GelOnset:        62,
		GelTemp:         68,
		CookMinutes:     10,
		NIR:             [5]float64{0.82, 0.79, 0.74, 0.68, 0.61},
	}
}

func newBasmatiEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(basmatiProfile())
	require.NoError(t, err)
	return e
}

func TestNewRejectsNonPositiveCookTime(t *testing.T) {
	p := basmatiProfile()
	p.CookMinutes = 0

	_, err := New(p)
	require.Error(t, err)

	var timeErr *InvalidTimeError
	require.True(t, errors.As(err, &timeErr))
	assert.Equal(t, 0.0, timeErr.CookMinutes)
}

func TestStepRejectsNegativeTime(t *testing.T) {
	e := newBasmatiEngine(t)

	_, _, _, err := e.Step(-1, LatchState{})
	require.Error(t, err)

	var timeErr *InvalidTimeError
	require.True(t, errors.As(err, &timeErr))
}

func TestStepStartConditions(t *testing.T) {
	e := newBasmatiEngine(t)

	s, events, latch, err := e.Step(0, LatchState{})
	require.NoError(t, err)

	assert.Equal(t, PhaseMicrowave, s.Phase)
	assert.InDelta(t, 12, s.MoisturePct, 1e-9)
	assert.InDelta(t, 25, s.Temperature, 1e-9)
	assert.InDelta(t, 1, s.Pressure, 1e-9)
	assert.InDelta(t, 40, s.MicrowavePower, 1e-9)
	assert.InDelta(t, 1500, s.UltrasonicVelocity, 1e-9)
	assert.Zero(t, s.GelProgress)

	// NIR scan and composition fire together at t=0, gated by one latch.
	require.Len(t, events, 2)
	assert.Equal(t, EventNIRScan, events[0].Type)
	assert.Equal(t, EventComposition, events[1].Type)
	assert.True(t, latch.NIRScanLogged)

	// Latched: a replay of t=0 with the updated state stays silent.
	_, events, _, err = e.Step(0, latch)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStepTransferBoundary(t *testing.T) {
	e := newBasmatiEngine(t)

	// 0.45 * 600s = 270s: first instant of TRANSFER.
	s, events, latch, err := e.Step(270, LatchState{})
	require.NoError(t, err)

	assert.Equal(t, PhaseTransfer, s.Phase)
	assert.InDelta(t, 45, s.MoisturePct, 1e-9)
	assert.InDelta(t, 83, s.Temperature, 1e-9) // gel temp 68 + 15
	assert.InDelta(t, 1, s.Pressure, 1e-9)
	assert.Zero(t, s.MicrowavePower)
	assert.InDelta(t, 1620, s.UltrasonicVelocity, 1e-9)
	assert.InDelta(t, 60, s.GelProgress, 1e-9)

	require.Len(t, events, 1)
	assert.Equal(t, EventTransfer, events[0].Type)
	assert.True(t, latch.TransferLogged)
}

func TestStepPressureBoundary(t *testing.T) {
	e := newBasmatiEngine(t)

	// 0.48 * 600s = 288s: first instant of PRESSURE; ramp starts at 1 atm.
	s, _, _, err := e.Step(288, LatchState{})
	require.NoError(t, err)

	assert.Equal(t, PhasePressure, s.Phase)
	assert.InDelta(t, 45, s.MoisturePct, 1e-9)
	assert.InDelta(t, 83, s.Temperature, 1e-9)
	assert.InDelta(t, 1, s.Pressure, 1e-9)
	assert.InDelta(t, 1620, s.UltrasonicVelocity, 1e-9)
	assert.InDelta(t, 60, s.GelProgress, 1e-9)
}

func TestStepPressureRampAndHold(t *testing.T) {
	e := newBasmatiEngine(t)

	// t=300s: frac 0.5, phase progress (0.5-0.48)/0.37.
	s, _, _, err := e.Step(300, LatchState{})
	require.NoError(t, err)
	p := (0.5 - 0.48) / 0.37
	assert.InDelta(t, 1.0+1.2*(p/0.15), s.Pressure, 1e-9)

	// Past the ramp the pressure holds at 2.2 atm.
	s, _, _, err = e.Step(400, LatchState{})
	require.NoError(t, err)
	assert.InDelta(t, 2.2, s.Pressure, 1e-9)
}

func TestStepEndConditions(t *testing.T) {
	e := newBasmatiEngine(t)

	s, _, _, err := e.Step(600, LatchState{})
	require.NoError(t, err)

	assert.Equal(t, PhaseDone, s.Phase)
	assert.InDelta(t, 63, s.MoisturePct, 1e-9) // target 65 - 2
	assert.InDelta(t, 65, s.Temperature, 1e-9) // 100 - 35
	assert.InDelta(t, 1.0, s.Pressure, 1e-9)   // 2.2 - 1.2
	assert.InDelta(t, 1680, s.UltrasonicVelocity, 1e-9)
	assert.InDelta(t, 100, s.GelProgress, 1e-9)
}

func TestStepClampsTimePastEnd(t *testing.T) {
	e := newBasmatiEngine(t)

	end, _, _, err := e.Step(600, LatchState{})
	require.NoError(t, err)
	late, _, _, err := e.Step(700, LatchState{})
	require.NoError(t, err)

	assert.Equal(t, end, late)
}

func TestGelOnsetEvent(t *testing.T) {
	e := newBasmatiEngine(t)

	// Onset 62 °C is crossed at p = (62-25)/(68+15-25) of the microwave
	// phase, i.e. t ≈ 172.2s.
	s, events, latch, err := e.Step(172, LatchState{NIRScanLogged: true})
	require.NoError(t, err)
	assert.Less(t, s.Temperature, 62.0)
	assert.Empty(t, events)
	assert.False(t, latch.GelOnsetLogged)
	assert.Zero(t, s.GelProgress)

	s, events, latch, err = e.Step(173, LatchState{NIRScanLogged: true})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.Temperature, 62.0)
	require.Len(t, events, 1)
	assert.Equal(t, EventGelOnset, events[0].Type)
	assert.True(t, latch.GelOnsetLogged)
	assert.Greater(t, s.GelProgress, 0.0)
}

func TestGelCompleteEvent(t *testing.T) {
	e := newBasmatiEngine(t)
	latch := LatchState{NIRScanLogged: true, GelOnsetLogged: true, TransferLogged: true}

	// Gel-complete fires past 60% of the pressure phase:
	// frac > 0.48 + 0.6*0.37 = 0.702, i.e. t > 421.2s.
	_, events, next, err := e.Step(421, latch)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.False(t, next.GelCompleteLogged)

	_, events, next, err = e.Step(422, latch)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, EventGelComplete, events[0].Type)
	assert.True(t, next.GelCompleteLogged)
}

func TestStepIsPure(t *testing.T) {
	e := newBasmatiEngine(t)

	for _, tt := range []float64{0, 90, 173, 270, 288, 300, 422, 540, 580, 600} {
		s1, ev1, l1, err1 := e.Step(tt, LatchState{})
		s2, ev2, l2, err2 := e.Step(tt, LatchState{})
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, s1, s2, "sample at t=%v", tt)
		assert.Equal(t, ev1, ev2, "events at t=%v", tt)
		assert.Equal(t, l1, l2, "latch at t=%v", tt)
	}
}

func TestPhaseAndGelProgressMonotonic(t *testing.T) {
	e := newBasmatiEngine(t)
	order := map[Phase]int{
		PhaseMicrowave: 0,
		PhaseTransfer:  1,
		PhasePressure:  2,
		PhaseCooling:   3,
		PhaseDone:      4,
	}

	latch := LatchState{}
	prevPhase := -1
	prevGel := -1.0
	for tt := 0.0; tt <= 600; tt++ {
		s, _, next, err := e.Step(tt, latch)
		require.NoError(t, err)
		latch = next

		require.GreaterOrEqual(t, order[s.Phase], prevPhase, "phase regressed at t=%v", tt)
		require.GreaterOrEqual(t, s.GelProgress, prevGel, "gel progress regressed at t=%v", tt)
		require.GreaterOrEqual(t, s.GelProgress, 0.0)
		require.LessOrEqual(t, s.GelProgress, 100.0)

		prevPhase = order[s.Phase]
		prevGel = s.GelProgress
	}
}

func TestOneShotEventsFireExactlyOncePerRun(t *testing.T) {
	e := newBasmatiEngine(t)

	counts := map[EventType]int{}
	latch := LatchState{}
	for tt := 0.0; tt <= 600; tt++ {
		_, events, next, err := e.Step(tt, latch)
		require.NoError(t, err)
		latch = next
		for _, ev := range events {
			counts[ev.Type]++
		}
	}

	for _, et := range []EventType{EventNIRScan, EventComposition, EventGelOnset, EventTransfer, EventGelComplete} {
		assert.Equal(t, 1, counts[et], "event %s", et)
	}
	assert.True(t, latch.NIRScanLogged)
	assert.True(t, latch.GelOnsetLogged)
	assert.True(t, latch.TransferLogged)
	assert.True(t, latch.GelCompleteLogged)
}

func TestPeriodicStatusEventsByPhase(t *testing.T) {
	e := newBasmatiEngine(t)
	latch := LatchState{
		NIRScanLogged: true, GelOnsetLogged: true,
		TransferLogged: true, GelCompleteLogged: true,
	}

	// Microwave status: local progress > 0.2 and a whole minute.
	_, events, _, err := e.Step(120, latch)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventHeatingStatus, events[0].Type)

	// Too early in the phase: no status even on a whole minute.
	_, events, _, err = e.Step(0, latch)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Pressure hold report every 80s.
	_, events, _, err = e.Step(400, latch)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventPressureHold, events[0].Type)

	// Depressurizing report early in cooling: t=510 is frac 0.85.
	_, events, _, err = e.Step(510, latch)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventDepressurizing, events[0].Type)

	// Completion status while done.
	_, events, _, err = e.Step(580, latch)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventCookComplete, events[0].Type)
}
