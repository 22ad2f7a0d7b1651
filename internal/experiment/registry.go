package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/heatmc/internal/config"
)

// sweepable maps a parameter name to the mutation it applies. Integer
// fields reject fractional sweep values instead of truncating them.
var sweepable = map[string]func(*config.Config, float64) error{
	"alpha": func(c *config.Config, v float64) error {
		c.Alpha = v
		return nil
	},
	"convection": func(c *config.Config, v float64) error {
		c.Convection = v
		return nil
	},
	"dt": func(c *config.Config, v float64) error {
		c.Dt = v
		return nil
	},
	"q": func(c *config.Config, v float64) error {
		n, err := wholeNumber(v)
		if err != nil {
			return err
		}
		c.Q = n
		return nil
	},
	"packets": func(c *config.Config, v float64) error {
		n, err := wholeNumber(v)
		if err != nil {
			return err
		}
		c.NPackets = n
		return nil
	},
	"radius": func(c *config.Config, v float64) error {
		n, err := wholeNumber(v)
		if err != nil {
			return err
		}
		c.HotspotRadius = n
		return nil
	},
}

func wholeNumber(v float64) (int, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("value %v is not a whole number", v)
	}
	return int(v), nil
}

// SweepFields lists the sweepable parameter names in sorted order.
func SweepFields() []string {
	names := make([]string, 0, len(sweepable))
	for name := range sweepable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
