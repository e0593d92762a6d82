package sim

// Phase boundaries as fractions of total cook time. These constants are the
// single source of truth for both the phase mapping and event detection, so
// the two can never disagree about where a phase starts.
const (
	fracMicrowaveEnd = 0.45
	fracTransferEnd  = 0.48
	fracPressureEnd  = 0.85
	fracCoolingEnd   = 0.95

	// fracPressureRampEnd is the portion of the pressure phase during which
	// pressure ramps linearly from 1.0 to peak.
	fracPressureRampEnd = 0.15

	// fracGelCompleteAt is the pressure-phase progress past which the
	// gelatinization-complete event fires.
	fracGelCompleteAt = 0.6
)

// Physical anchor points shared by the per-phase formulas.
const (
	ambientTemp   = 25.0   // °C at process start
	boilTemp      = 100.0  // °C during the pressure hold
	transferTemp  = 15.0   // °C added above gel temp at the end of microwave
	peakPressure  = 2.2    // atm
	basePressure  = 1.0    // atm
	baseVelocity  = 1500.0 // m/s in the raw slurry
	transferSonic = 1620.0 // m/s at vessel transfer
	peakVelocity  = 1690.0 // m/s at the end of the pressure phase

	// transferMoisture is the percent moisture reached by the end of the
	// microwave phase and held through the vessel transfer.
	transferMoisture = 45.0

	// gelAtTransfer is the gelatinization progress reached by the end of
	// the microwave phase; the remaining span completes under pressure.
	gelAtTransfer = 60.0
)

// PhaseAt maps a cook-time fraction in [0, 1] to its phase. The mapping is
// total and one-directional: each fraction belongs to exactly one phase.
func PhaseAt(frac float64) Phase {
	switch {
	case frac < fracMicrowaveEnd:
		return PhaseMicrowave
	case frac < fracTransferEnd:
		return PhaseTransfer
	case frac < fracPressureEnd:
		return PhasePressure
	case frac < fracCoolingEnd:
		return PhaseCooling
	default:
		return PhaseDone
	}
}

// phaseProgress returns the position of frac within [start, end) as a value
// in [0, 1].
func phaseProgress(frac, start, end float64) float64 {
	return (frac - start) / (end - start)
}
