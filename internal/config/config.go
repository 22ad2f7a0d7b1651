package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure. Validation
// runs before any simulation state is created, so a bad configuration
// can never produce a partial run.
var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	DefaultLx             = 0.025 // plate width (m)
	DefaultLy             = 0.025 // plate height (m)
	DefaultDx             = 0.002 // cell size (m)
	DefaultDt             = 0.002 // timestep (s)
	DefaultTMax           = 5.0   // time horizon (s)
	DefaultPackets        = 800
	DefaultQ              = 15
	DefaultRadius         = 3
	DefaultOutputInterval = 100
	DefaultSeed           = 42

	// Per-step packet loss to airflow. Calibrated against literature
	// heat-loss percentages for forced-convection heat sinks; a tuned
	// parameter, not a derived constant.
	DefaultConvection = 0.004
)

const (
	BoundaryAbsorbing  = "absorbing"
	BoundaryReflecting = "reflecting"

	EnginePacket = "packet"
	EngineBatch  = "batch"
)

// Config holds every parameter of a single simulation run. A value is
// validated once and treated as immutable for the run's duration.
type Config struct {
	Lx float64 `yaml:"lx"`
	Ly float64 `yaml:"ly"`
	Dx float64 `yaml:"dx"`

	Dt   float64 `yaml:"dt"`
	TMax float64 `yaml:"t_max"`

	Alpha float64 `yaml:"alpha"` // thermal diffusivity (m²/s)

	NPackets int `yaml:"n_packets"` // packet budget; a tenth is seeded at t=0
	Q        int `yaml:"q"`         // packets injected per step

	// Hotspot center in grid coordinates; -1 means grid center.
	HotspotX      int `yaml:"hotspot_x"`
	HotspotY      int `yaml:"hotspot_y"`
	HotspotRadius int `yaml:"hotspot_radius"`

	Boundary   string  `yaml:"boundary"`
	Convection float64 `yaml:"convection"`

	Engine         string `yaml:"engine"`
	OutputInterval int    `yaml:"output_interval"`
	Seed           int64  `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Lx:             DefaultLx,
		Ly:             DefaultLy,
		Dx:             DefaultDx,
		Dt:             DefaultDt,
		TMax:           DefaultTMax,
		Alpha:          MaterialAlpha("copper"),
		NPackets:       DefaultPackets,
		Q:              DefaultQ,
		HotspotX:       -1,
		HotspotY:       -1,
		HotspotRadius:  DefaultRadius,
		Boundary:       BoundaryAbsorbing,
		Convection:     DefaultConvection,
		Engine:         EnginePacket,
		OutputInterval: DefaultOutputInterval,
		Seed:           DefaultSeed,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Nx returns the number of grid cells along x.
func (c *Config) Nx() int { return int(c.Lx / c.Dx) }

// Ny returns the number of grid cells along y.
func (c *Config) Ny() int { return int(c.Ly / c.Dx) }

// Steps returns the number of timesteps in the horizon. Rounded, not
// truncated: t_max is usually an exact multiple of dt and float division
// can land a hair below it.
func (c *Config) Steps() int { return int(math.Round(c.TMax / c.Dt)) }

// MoveProbability is the per-step probability that a packet takes a
// lattice step, derived from α ≈ Δx²·p/(4Δt). This scaling is what makes
// the walk converge to the heat equation in the large-N limit.
func (c *Config) MoveProbability() float64 {
	return 4 * c.Alpha * c.Dt / (c.Dx * c.Dx)
}

// HotspotCenter resolves the configured center, defaulting to the grid
// center when either coordinate is negative.
func (c *Config) HotspotCenter() (int, int) {
	cx, cy := c.HotspotX, c.HotspotY
	if cx < 0 {
		cx = c.Nx() / 2
	}
	if cy < 0 {
		cy = c.Ny() / 2
	}
	return cx, cy
}

func (c *Config) Validate() error {
	if c.Lx <= 0 || c.Ly <= 0 || c.Dx <= 0 {
		return fmt.Errorf("%w: plate dimensions and cell size must be positive", ErrInvalidConfig)
	}
	if c.Dt <= 0 || c.TMax <= 0 {
		return fmt.Errorf("%w: dt and t_max must be positive", ErrInvalidConfig)
	}
	if c.Nx() < 1 || c.Ny() < 1 {
		return fmt.Errorf("%w: cell size %g larger than plate", ErrInvalidConfig, c.Dx)
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("%w: diffusivity must be positive, got %g", ErrInvalidConfig, c.Alpha)
	}
	if p := c.MoveProbability(); p > 1.0 {
		return fmt.Errorf("%w: move probability %.3f > 1; reduce dt or increase dx", ErrInvalidConfig, p)
	}
	if c.NPackets < 0 {
		return fmt.Errorf("%w: n_packets must be non-negative, got %d", ErrInvalidConfig, c.NPackets)
	}
	if c.Q < 0 {
		return fmt.Errorf("%w: injection rate q must be a non-negative integer, got %d", ErrInvalidConfig, c.Q)
	}
	if c.Convection < 0 || c.Convection > 1 {
		return fmt.Errorf("%w: convection probability %g outside [0,1]", ErrInvalidConfig, c.Convection)
	}
	if c.HotspotRadius <= 0 {
		return fmt.Errorf("%w: hotspot radius must be positive, got %d", ErrInvalidConfig, c.HotspotRadius)
	}
	cx, cy := c.HotspotCenter()
	r := c.HotspotRadius
	if cx-r < 0 || cx+r >= c.Nx() || cy-r < 0 || cy+r >= c.Ny() {
		return fmt.Errorf("%w: hotspot disk (center %d,%d radius %d) outside %dx%d grid",
			ErrInvalidConfig, cx, cy, r, c.Nx(), c.Ny())
	}
	switch c.Boundary {
	case BoundaryAbsorbing, BoundaryReflecting:
	default:
		return fmt.Errorf("%w: unknown boundary type %q", ErrInvalidConfig, c.Boundary)
	}
	switch c.Engine {
	case EnginePacket, EngineBatch:
	default:
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidConfig, c.Engine)
	}
	if c.OutputInterval <= 0 {
		return fmt.Errorf("%w: output interval must be positive, got %d", ErrInvalidConfig, c.OutputInterval)
	}
	return nil
}

func (c *Config) String() string {
	cx, cy := c.HotspotCenter()
	return fmt.Sprintf(
		"grid %dx%d (%.0fx%.0f mm), %d steps of %.1fms, alpha=%.2e (p_move=%.3f), "+
			"packets=%d q=%d/step, hotspot=(%d,%d) r=%d, convection=%.4f, %s/%s",
		c.Nx(), c.Ny(), c.Lx*1000, c.Ly*1000, c.Steps(), c.Dt*1000,
		c.Alpha, c.MoveProbability(), c.NPackets, c.Q, cx, cy, c.HotspotRadius,
		c.Convection, c.Boundary, c.Engine)
}
