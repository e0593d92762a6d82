package grain

import (
	"fmt"
	"sort"
)

// DefaultWaterRatio is the water ratio (liters per gram) reported for ids
// with no registered ratio.
const DefaultWaterRatio = 2.0

// Registry maps grain ids to profiles and water ratios. Water ratios are
// kept separate from profiles: the ratio is a serving recommendation, not an
// input to the physical model.
type Registry struct {
	profiles map[string]Profile
	ratios   map[string]float64
}

// Default returns a registry populated with the built-in grains.
func Default() *Registry {
	r := &Registry{
		profiles: make(map[string]Profile),
		ratios:   make(map[string]float64),
	}
	for id, p := range builtinProfiles {
		r.profiles[id] = p
	}
	for id, ratio := range builtinRatios {
		r.ratios[id] = ratio
	}
	return r
}

// Lookup returns the profile for the given id.
// Returns *UnknownGrainError if the id is not registered.
func (r *Registry) Lookup(id string) (Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, &UnknownGrainError{ID: id}
	}
	return p, nil
}

// Register validates and adds (or replaces) a profile. A ratio <= 0 leaves
// any existing ratio untouched.
func (r *Registry) Register(id string, p Profile, ratio float64) error {
	if id == "" {
		return fmt.Errorf("empty grain id")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	r.profiles[id] = p
	if ratio > 0 {
		r.ratios[id] = ratio
	}
	return nil
}

// WaterRatio returns the liters-per-gram ratio for the given id, or
// DefaultWaterRatio if none is registered.
func (r *Registry) WaterRatio(id string) float64 {
	if ratio, ok := r.ratios[id]; ok {
		return ratio
	}
	return DefaultWaterRatio
}

// WaterRequired returns the recommended water volume for the given weight.
// Returns *InvalidWeightError for non-positive weights.
func (r *Registry) WaterRequired(id string, grams float64) (float64, error) {
	if grams <= 0 {
		return 0, &InvalidWeightError{Grams: grams}
	}
	return grams * r.WaterRatio(id), nil
}

// IDs returns the registered grain ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var builtinProfiles = map[string]Profile{
	"basmati_rice": {
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
	},
	"jasmine_rice": {
		Name:            "Jasmine Rice",
		StarchPct:       79.5,
		ProteinPct:      7.2,
		AmylosePct:      15.5,
		AmylopectinPct:  64.0,
		InitialMoisture: 13,
		TargetMoisture:  68,
		GelOnset:        65,
		GelTemp:         74,
		CookMinutes:     12,
		NIR:             [5]float64{0.84, 0.81, 0.77, 0.70, 0.63},
	},
	"brown_rice": {
		Name:            "Brown Rice",
		StarchPct:       72.8,
		ProteinPct:      9.0,
		AmylosePct:      20.5,
		AmylopectinPct:  52.3,
		InitialMoisture: 11,
		TargetMoisture:  62,
		GelOnset:        66,
		GelTemp:         76,
		CookMinutes:     25,
		NIR:             [5]float64{0.71, 0.68, 0.64, 0.58, 0.52},
	},
	"quinoa": {
		Name:            "Quinoa",
		StarchPct:       64.2,
		ProteinPct:      14.1,
		AmylosePct:      11.0,
		AmylopectinPct:  53.2,
		InitialMoisture: 10,
		TargetMoisture:  70,
		GelOnset:        57,
		GelTemp:         64,
		CookMinutes:     15,
		NIR:             [5]float64{0.76, 0.73, 0.69, 0.63, 0.57},
	},
	"chickpeas": {
		Name:            "Chickpeas",
		StarchPct:       50.3,
		ProteinPct:      20.5,
		AmylosePct:      17.0,
		AmylopectinPct:  33.3,
		InitialMoisture: 9,
		TargetMoisture:  60,
		GelOnset:        60,
		GelTemp:         70,
		CookMinutes:     40,
		NIR:             [5]float64{0.69, 0.66, 0.62, 0.57, 0.51},
	},
	"green_lentils": {
		Name:            "Green Lentils",
		StarchPct:       47.1,
		ProteinPct:      24.6,
		AmylosePct:      15.8,
		AmylopectinPct:  31.3,
		InitialMoisture: 10,
		TargetMoisture:  66,
		GelOnset:        58,
		GelTemp:         67,
		CookMinutes:     20,
		NIR:             [5]float64{0.64, 0.61, 0.58, 0.53, 0.48},
	},
}

// Liters of water per gram of grain.
var builtinRatios = map[string]float64{
	"basmati_rice":  1.8,
	"jasmine_rice":  1.5,
	"brown_rice":    2.5,
	"quinoa":        2.0,
	"chickpeas":     3.0,
	"green_lentils": 2.5,
}
