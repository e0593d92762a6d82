package sim

import (
	"fmt"
	"math"

	"github.com/sweeney/cooksim/internal/grain"
)

// Engine computes simulation samples for one grain profile. It holds no
// mutable run state: calling Step twice with the same time and latch state
// produces the same sample and the same candidate events.
type Engine struct {
	profile     grain.Profile
	cookSeconds float64
}

// New creates an engine for the given profile.
// Returns *InvalidTimeError if the profile's cook duration is non-positive.
func New(p grain.Profile) (*Engine, error) {
	if p.CookMinutes <= 0 {
		return nil, &InvalidTimeError{CookMinutes: p.CookMinutes}
	}
	return &Engine{
		profile:     p,
		cookSeconds: p.CookMinutes * 60,
	}, nil
}

// Profile returns the profile the engine was built for.
func (e *Engine) Profile() grain.Profile {
	return e.profile
}

// CookSeconds returns the total cook duration in seconds.
func (e *Engine) CookSeconds() float64 {
	return e.cookSeconds
}

// Step computes the sample for elapsed time t (seconds) and any events whose
// conditions are first crossed at t. One-shot events are gated by the given
// latch state; the updated state is returned for the caller to thread into
// the next tick. Times past the end of the cook clamp to the final instant.
func (e *Engine) Step(t float64, latch LatchState) (Sample, []Event, LatchState, error) {
	if t < 0 {
		return Sample{}, nil, latch, &InvalidTimeError{Seconds: t, CookMinutes: e.profile.CookMinutes}
	}
	if t > e.cookSeconds {
		t = e.cookSeconds
	}

	frac := t / e.cookSeconds
	s := Sample{
		Minutes: t / 60,
		Phase:   PhaseAt(frac),
	}

	var events []Event
	next := latch
	pr := e.profile

	switch s.Phase {
	case PhaseMicrowave:
		p := frac / fracMicrowaveEnd
		s.MoisturePct = pr.InitialMoisture + (transferMoisture-pr.InitialMoisture)*p
		s.Temperature = ambientTemp + (pr.GelTemp+transferTemp-ambientTemp)*p
		s.Pressure = basePressure
		s.MicrowavePower = 40 + 40*p
		s.UltrasonicVelocity = baseVelocity + (transferSonic-baseVelocity)*p
		s.GelProgress = e.microwaveGelProgress(p, s.Temperature)

		if t == 0 && !latch.NIRScanLogged {
			next.NIRScanLogged = true
			events = append(events,
				Event{Minutes: s.Minutes, Type: EventNIRScan, Message: fmt.Sprintf(
					"NIR scan of %s: reflectance [%.2f %.2f %.2f %.2f %.2f]",
					pr.Name, pr.NIR[0], pr.NIR[1], pr.NIR[2], pr.NIR[3], pr.NIR[4])},
				Event{Minutes: s.Minutes, Type: EventComposition, Message: fmt.Sprintf(
					"Composition: moisture %.1f%%, starch %.1f%%, protein %.1f%%, amylose %.1f%%, amylopectin %.1f%%",
					pr.InitialMoisture, pr.StarchPct, pr.ProteinPct, pr.AmylosePct, pr.AmylopectinPct)},
			)
		}

		if s.Temperature >= pr.GelOnset && !latch.GelOnsetLogged {
			next.GelOnsetLogged = true
			events = append(events, Event{Minutes: s.Minutes, Type: EventGelOnset, Message: fmt.Sprintf(
				"Gelatinization onset at %.1f°C, ultrasonic velocity %.0f m/s",
				s.Temperature, s.UltrasonicVelocity)})
		}

		if p > 0.2 && onInterval(t, 60) {
			events = append(events, Event{Minutes: s.Minutes, Type: EventHeatingStatus, Message: fmt.Sprintf(
				"Microwave heating: %.1f°C, moisture %.1f%%, power %.0f%%",
				s.Temperature, s.MoisturePct, s.MicrowavePower)})
		}

	case PhaseTransfer:
		// Short fixed-duration vessel move: observables hold.
		s.MoisturePct = transferMoisture
		s.Temperature = pr.GelTemp + transferTemp
		s.Pressure = basePressure
		s.MicrowavePower = 0
		s.UltrasonicVelocity = transferSonic
		s.GelProgress = gelAtTransfer

		if !latch.TransferLogged {
			next.TransferLogged = true
			events = append(events, Event{Minutes: s.Minutes, Type: EventTransfer,
				Message: "Transferring to pressure vessel"})
		}

	case PhasePressure:
		p := phaseProgress(frac, fracTransferEnd, fracPressureEnd)
		s.MoisturePct = transferMoisture + (pr.TargetMoisture-transferMoisture)*p
		s.Temperature = (pr.GelTemp + transferTemp) + (boilTemp-pr.GelTemp-transferTemp)*p
		s.MicrowavePower = 0
		s.UltrasonicVelocity = transferSonic + (peakVelocity-transferSonic)*p
		s.GelProgress = gelAtTransfer + (100-gelAtTransfer)*p
		if p < fracPressureRampEnd {
			s.Pressure = basePressure + (peakPressure-basePressure)*(p/fracPressureRampEnd)
		} else {
			s.Pressure = peakPressure
		}

		if p > fracGelCompleteAt && !latch.GelCompleteLogged {
			next.GelCompleteLogged = true
			events = append(events, Event{Minutes: s.Minutes, Type: EventGelComplete, Message: fmt.Sprintf(
				"Gelatinization complete, ultrasonic velocity %.0f m/s", s.UltrasonicVelocity)})
		}

		if p < fracPressureRampEnd && onInterval(t, 40) {
			events = append(events, Event{Minutes: s.Minutes, Type: EventPressureRamp, Message: fmt.Sprintf(
				"Pressure building: %.2f atm", s.Pressure)})
		}
		if p >= fracPressureRampEnd && onInterval(t, 80) {
			events = append(events, Event{Minutes: s.Minutes, Type: EventPressureHold, Message: fmt.Sprintf(
				"Pressure holding at %.2f atm, moisture %.1f%%", s.Pressure, s.MoisturePct)})
		}

	case PhaseCooling, PhaseDone:
		// Cooling and done share one ramp over the final 15% of the cook;
		// only the phase label switches at the 0.95 boundary.
		p := phaseProgress(frac, fracPressureEnd, 1.0)
		s.MoisturePct = pr.TargetMoisture - 2*p
		s.Temperature = boilTemp - 35*p
		s.Pressure = peakPressure - 1.2*p
		s.MicrowavePower = 0
		s.UltrasonicVelocity = peakVelocity - 10*p
		s.GelProgress = 100

		if s.Phase == PhaseCooling && p < 0.3 && onInterval(t, 30) {
			events = append(events, Event{Minutes: s.Minutes, Type: EventDepressurizing, Message: fmt.Sprintf(
				"Depressurizing: %.2f atm, %.1f°C", s.Pressure, s.Temperature)})
		}
		if s.Phase == PhaseDone && onInterval(t, 20) {
			events = append(events, Event{Minutes: s.Minutes, Type: EventCookComplete, Message: fmt.Sprintf(
				"Cook complete: resting at %.1f°C", s.Temperature)})
		}
	}

	return s, events, next, nil
}

// microwaveGelProgress derives gelatinization progress during the microwave
// ramp. Progress stays at zero until the temperature crosses the onset, then
// scales linearly so that it reaches gelAtTransfer at the end of the phase.
func (e *Engine) microwaveGelProgress(p, temperature float64) float64 {
	pr := e.profile
	if temperature < pr.GelOnset {
		return 0
	}
	onsetFrac := (pr.GelOnset - ambientTemp) / (pr.GelTemp + transferTemp - ambientTemp)
	sinceOnset := (p - onsetFrac) / (1 - onsetFrac)
	return clamp(sinceOnset*gelAtTransfer, 0, gelAtTransfer)
}

// onInterval reports whether the whole-second part of t falls on a multiple
// of n seconds. Used for the periodic, unlatched status events; the decision
// log's time bucketing deduplicates repeats within the same instant.
func onInterval(t float64, n int) bool {
	return int(math.Floor(t))%n == 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
