package config

import (
	"fmt"
	"math"
	"sort"
)

// Material bundles the thermal properties used by the simulation.
// Diffusivity drives the walk; conductivity only enters through the
// temperature correction factor applied to reported hotspot values.
type Material struct {
	Alpha        float64 // thermal diffusivity (m²/s)
	Conductivity float64 // thermal conductivity (W/m·K)
}

// Room-temperature values from standard reference tables.
var Materials = map[string]Material{
	"silver":          {Alpha: 165.63e-6, Conductivity: 429},
	"gold":            {Alpha: 127e-6, Conductivity: 317},
	"copper":          {Alpha: 111e-6, Conductivity: 401},
	"aluminum":        {Alpha: 97e-6, Conductivity: 237},
	"iron":            {Alpha: 23e-6, Conductivity: 80},
	"steel_carbon":    {Alpha: 18.8e-6, Conductivity: 50},
	"steel_stainless": {Alpha: 4.2e-6, Conductivity: 16},
}

// referenceMaterial normalizes the conductivity correction.
const referenceMaterial = "steel_carbon"

func MaterialAlpha(name string) float64 {
	return Materials[name].Alpha
}

func ListMaterials() []string {
	names := make([]string, 0, len(Materials))
	for name := range Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaterialConfig builds a config for the named material at injection
// rate q, leaving every other parameter at its default.
func MaterialConfig(material string, q int) (*Config, error) {
	m, ok := Materials[material]
	if !ok {
		return nil, fmt.Errorf("%w: unknown material %q (available: %v)",
			ErrInvalidConfig, material, ListMaterials())
	}
	cfg := DefaultConfig()
	cfg.Alpha = m.Alpha
	cfg.Q = q
	return cfg, nil
}

// MaterialName finds the material whose diffusivity matches alpha, or
// "custom" when none does.
func MaterialName(alpha float64) string {
	for name, m := range Materials {
		if math.Abs(alpha-m.Alpha) < 1e-8 {
			return name
		}
	}
	return "custom"
}

// CorrectionFactor rescales a raw packet-count temperature to account for
// conductivity. The model's temperature scales with 1/α while the real
// steady-state value scales with 1/κ; the factor (α/κ)/(α_ref/κ_ref)
// bridges the two, normalized to carbon steel.
func (c *Config) CorrectionFactor() float64 {
	name := MaterialName(c.Alpha)
	if name == "custom" {
		return 1.0
	}
	m := Materials[name]
	ref := Materials[referenceMaterial]
	return (m.Alpha / m.Conductivity) / (ref.Alpha / ref.Conductivity)
}
