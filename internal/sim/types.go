package sim

import (
	"context"
	"errors"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/grid"
)

// ErrDomainEscape reports a live packet outside the grid at deposit time.
// This indicates a defect in the step rule and is fatal; clamping it away
// would mask the bug.
var ErrDomainEscape = errors.New("sim: live packet outside domain")

// ErrFinished reports a second Run on an engine whose run completed.
var ErrFinished = errors.New("sim: engine already finished")

// Packet is a fungible statistical sample: a grid position, nothing more.
// The live population is a multiset of positions.
type Packet struct {
	X, Y int
}

// Engine runs one complete simulation. The per-packet Simulator and the
// columnar BatchEngine are interchangeable behind this contract, selected
// by Config.Engine.
type Engine interface {
	Run(ctx context.Context) (*RunResult, error)
	AddMetric(m Metric)
}

// Metric observes engine state once per timestep and reduces it to a
// scalar after the run.
type Metric interface {
	Name() string
	Observe(step int, t float64, live int, hotspotTemp float64)
	Value() float64
	Reset()
}

// RunResult is the immutable record of one finished run.
type RunResult struct {
	Config *config.Config
	Seed   int64
	Steps  int

	// Per-step series, one entry per timestep.
	Times        []float64
	PacketCounts []int
	HotspotTemps []float64

	// Totals over the whole run. Injected counts initial seeding too.
	Injected     int
	BoundaryLost int
	Convected    int

	// Accumulator checkpoints every OutputInterval steps, plus the final
	// state of the residence-count accumulator.
	Snapshots     []*grid.Field
	SnapshotTimes []float64
	Accumulator   *grid.Field

	Metrics map[string]float64
}

// NormalizedField is the temperature-field estimate: residence counts
// divided by the number of packets injected over the run.
func (r *RunResult) NormalizedField() *grid.Field {
	if r.Injected == 0 {
		return r.Accumulator.Clone()
	}
	return r.Accumulator.Scale(1 / float64(r.Injected))
}

// FinalPackets returns the live population after the last step.
func (r *RunResult) FinalPackets() int {
	if len(r.PacketCounts) == 0 {
		return 0
	}
	return r.PacketCounts[len(r.PacketCounts)-1]
}

// PeakHotspotTemp returns the maximum of the hotspot temperature series.
func (r *RunResult) PeakHotspotTemp() float64 {
	peak := 0.0
	for _, v := range r.HotspotTemps {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// New builds the engine selected by cfg.Engine. The config is validated
// here, before any packet exists.
func New(cfg *config.Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Engine {
	case config.EngineBatch:
		return NewBatchEngine(cfg), nil
	default:
		return NewSimulator(cfg), nil
	}
}

// engine lifecycle: new → running (seeded before the first step) → finished
const (
	stateNew = iota
	stateRunning
	stateFinished
)
