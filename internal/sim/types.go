// Package sim contains the pure cooking simulation engine. This package has
// NO external dependencies beyond the grain constants (no MQTT, HTTP, OS, or
// wall-clock time). Elapsed process time is always an explicit parameter, so
// any instant of a run can be recomputed independently.
package sim

// Phase is one of the five ordered stages of the cooking process.
type Phase string

const (
	PhaseMicrowave Phase = "MICROWAVE"
	PhaseTransfer  Phase = "TRANSFER"
	PhasePressure  Phase = "PRESSURE"
	PhaseCooling   Phase = "COOLING"
	PhaseDone      Phase = "DONE"
)

// Transformation classifies the starch state from gelatinization progress.
type Transformation string

const (
	TransformHydration   Transformation = "Hydration"
	TransformGelOnset    Transformation = "Gelatinization Onset"
	TransformGelComplete Transformation = "Complete Gelatinization"
	TransformFullyCooked Transformation = "Fully Cooked"
)

// Sample is one timestamped snapshot of all physical observables.
type Sample struct {
	// Minutes is the elapsed process time, in minutes.
	Minutes float64

	MoisturePct        float64 // percent moisture
	Temperature        float64 // °C
	Pressure           float64 // atm
	UltrasonicVelocity float64 // m/s
	MicrowavePower     float64 // percent of rated power
	GelProgress        float64 // 0–100, non-decreasing within a run
	Phase              Phase
}

// LatchState holds the four one-shot event gates for a run. It is a value:
// Step returns the updated state and the caller threads it into the next
// tick. All latches reset together when the run restarts.
type LatchState struct {
	NIRScanLogged     bool
	GelOnsetLogged    bool
	TransferLogged    bool
	GelCompleteLogged bool
}

// EventType identifies a decision-log event.
type EventType string

const (
	EventNIRScan        EventType = "NIR_SCAN"
	EventComposition    EventType = "COMPOSITION"
	EventGelOnset       EventType = "GEL_ONSET"
	EventTransfer       EventType = "TRANSFER"
	EventGelComplete    EventType = "GEL_COMPLETE"
	EventHeatingStatus  EventType = "HEATING_STATUS"
	EventPressureRamp   EventType = "PRESSURE_RAMP"
	EventPressureHold   EventType = "PRESSURE_HOLD"
	EventDepressurizing EventType = "DEPRESSURIZING"
	EventCookComplete   EventType = "COOK_COMPLETE"
)

// Event is a candidate decision-log entry emitted by the engine. The engine
// never writes to the log itself; the driver forwards events so the engine
// stays pure.
type Event struct {
	Minutes float64
	Type    EventType
	Message string
}
