// Package grain holds the physical and optical constants for each supported
// grain. Profiles are immutable value types; the Registry is the only lookup
// path and rejects unknown ids rather than inventing a default profile.
package grain

import "fmt"

// Profile contains the per-grain constants that drive the cooking model.
// Composition and NIR values are informational (logged, not used in physics).
type Profile struct {
	Name string

	// Composition, percent by weight.
	StarchPct      float64
	ProteinPct     float64
	AmylosePct     float64
	AmylopectinPct float64

	// Hydration bounds, percent moisture.
	InitialMoisture float64
	TargetMoisture  float64

	// GelOnset is the temperature (°C) at which starch gelatinization
	// begins. GelTemp is the reference temperature used to scale the
	// heating ramp. Invariant: 0 < GelOnset <= GelTemp.
	GelOnset float64
	GelTemp  float64

	// CookMinutes is the total process duration.
	CookMinutes float64

	// NIR is the five-point near-infrared reflectance fingerprint.
	NIR [5]float64
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if p.GelOnset <= 0 || p.GelOnset > p.GelTemp {
		return fmt.Errorf("profile %q: gelatinization onset %.1f outside (0, %.1f]", p.Name, p.GelOnset, p.GelTemp)
	}
	if p.InitialMoisture >= p.TargetMoisture {
		return fmt.Errorf("profile %q: initial moisture %.1f not below target %.1f", p.Name, p.InitialMoisture, p.TargetMoisture)
	}
	if p.CookMinutes <= 0 {
		return fmt.Errorf("profile %q: cook time %.1f min not positive", p.Name, p.CookMinutes)
	}
	return nil
}
