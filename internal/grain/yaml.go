package grain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk layout of a profile override file.
type profileFile struct {
	Profiles []profileYAML `yaml:"profiles"`
}

type profileYAML struct {
	ID              string     `yaml:"id"`
	Name            string     `yaml:"name"`
	StarchPct       float64    `yaml:"starch_pct"`
	ProteinPct      float64    `yaml:"protein_pct"`
	AmylosePct      float64    `yaml:"amylose_pct"`
	AmylopectinPct  float64    `yaml:"amylopectin_pct"`
	InitialMoisture float64    `yaml:"initial_moisture_pct"`
	TargetMoisture  float64    `yaml:"target_moisture_pct"`
	GelOnset        float64    `yaml:"gelatinization_onset_c"`
	GelTemp         float64    `yaml:"gelatinization_temp_c"`
	CookMinutes     float64    `yaml:"cook_minutes"`
	NIR             [5]float64 `yaml:"nir_reflectance"`
	WaterRatio      float64    `yaml:"water_ratio"`
}

// LoadOverrides reads a YAML profile file and registers its profiles,
// replacing any built-ins with the same id. Every profile is validated;
// the first invalid one aborts the load.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse profiles: %w", err)
	}

	for i, py := range file.Profiles {
		if py.ID == "" {
			return fmt.Errorf("profiles[%d]: missing id", i)
		}
		p := Profile{
			Name:            py.Name,
			StarchPct:       py.StarchPct,
			ProteinPct:      py.ProteinPct,
			AmylosePct:      py.AmylosePct,
			AmylopectinPct:  py.AmylopectinPct,
			InitialMoisture: py.InitialMoisture,
			TargetMoisture:  py.TargetMoisture,
			GelOnset:        py.GelOnset,
			GelTemp:         py.GelTemp,
			CookMinutes:     py.CookMinutes,
			NIR:             py.NIR,
		}
		if p.Name == "" {
			p.Name = py.ID
		}
		if err := r.Register(py.ID, p, py.WaterRatio); err != nil {
			return fmt.Errorf("profiles[%d]: %w", i, err)
		}
	}
	return nil
}
