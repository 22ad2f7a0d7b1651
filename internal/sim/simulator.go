package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/grid"
	"github.com/san-kum/heatmc/internal/physics"
	"github.com/san-kum/heatmc/internal/rng"
)

// Simulator is the per-packet engine: the live population is a slice of
// Packet values stepped one at a time. One run consumes one RNG stream
// linearly, so identical seed and config give bit-identical results.
type Simulator struct {
	cfg     *config.Config
	g       *grid.Grid
	walker  *physics.Walker
	src     *rng.Source
	metrics []Metric

	state   int
	packets []Packet
	acc     *grid.Field
}

func NewSimulator(cfg *config.Config) *Simulator {
	g := grid.New(cfg)
	return &Simulator{
		cfg:    cfg,
		g:      g,
		walker: physics.NewWalker(cfg, g),
		src:    rng.New(cfg.Seed),
		state:  stateNew,
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// seed places the initial population in the hotspot. Skipping this would
// bias every early-time measurement toward zero temperature.
func (s *Simulator) seed() int {
	n := s.cfg.NPackets / 10
	if n == 0 && s.cfg.NPackets > 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		x, y := s.g.SampleHotspot(s.src)
		s.packets = append(s.packets, Packet{X: x, Y: y})
	}
	return n
}

func (s *Simulator) Run(ctx context.Context) (*RunResult, error) {
	if s.state != stateNew {
		return nil, ErrFinished
	}

	steps := s.cfg.Steps()
	correction := s.cfg.CorrectionFactor()
	s.acc = grid.NewField(s.g.Nx, s.g.Ny)
	s.packets = make([]Packet, 0, s.cfg.NPackets+s.cfg.Q*steps/4)

	result := &RunResult{
		Config:       s.cfg,
		Seed:         s.cfg.Seed,
		Steps:        steps,
		Times:        make([]float64, 0, steps),
		PacketCounts: make([]int, 0, steps),
		HotspotTemps: make([]float64, 0, steps),
		Metrics:      make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.Injected += s.seed()
	s.state = stateRunning

	for step := 0; step < steps; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Inject, then step everything alive, newcomers included.
		for i := 0; i < s.cfg.Q; i++ {
			x, y := s.g.SampleHotspot(s.src)
			s.packets = append(s.packets, Packet{X: x, Y: y})
		}
		result.Injected += s.cfg.Q

		// Step and compact in one pass; slice order is the only
		// iteration order, keeping the run deterministic.
		live := s.packets[:0]
		for _, p := range s.packets {
			nx, ny, absorbed := s.walker.Step(p.X, p.Y, s.src)
			if absorbed {
				if s.g.InBounds(nx, ny) {
					result.Convected++
				} else {
					result.BoundaryLost++
				}
				continue
			}
			live = append(live, Packet{X: nx, Y: ny})
		}
		s.packets = live

		// Deposit residence counts and measure hotspot occupancy.
		inSpot := 0
		for _, p := range s.packets {
			if !s.g.InBounds(p.X, p.Y) {
				return nil, fmt.Errorf("%w: (%d,%d) at step %d", ErrDomainEscape, p.X, p.Y, step)
			}
			s.acc.Add(p.X, p.Y, 1)
			if s.g.InHotspot(p.X, p.Y) {
				inSpot++
			}
		}

		t := float64(step+1) * s.cfg.Dt
		temp := float64(inSpot) / float64(s.g.HotspotCells()) * correction

		result.Times = append(result.Times, t)
		result.PacketCounts = append(result.PacketCounts, len(s.packets))
		result.HotspotTemps = append(result.HotspotTemps, temp)

		for _, m := range s.metrics {
			m.Observe(step, t, len(s.packets), temp)
		}

		if (step+1)%s.cfg.OutputInterval == 0 {
			result.Snapshots = append(result.Snapshots, s.acc.Clone())
			result.SnapshotTimes = append(result.SnapshotTimes, t)
		}
	}

	result.Accumulator = s.acc.Clone()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.state = stateFinished
	return result, nil
}
