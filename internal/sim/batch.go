package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/grid"
	"github.com/san-kum/heatmc/internal/rng"
)

// BatchEngine holds the live population as parallel coordinate slices and
// processes each timestep in phases over the whole batch: one convection
// pass, one movement pass, one deposit pass. Statistically identical to
// Simulator, but RNG draws are grouped per phase, so outputs are not
// bit-compatible with the per-packet engine for a shared seed.
type BatchEngine struct {
	cfg     *config.Config
	g       *grid.Grid
	src     *rng.Source
	metrics []Metric

	moveProb   float64
	convection float64
	reflecting bool

	state int
	xs    []int
	ys    []int
	acc   *grid.Field
}

func NewBatchEngine(cfg *config.Config) *BatchEngine {
	return &BatchEngine{
		cfg:        cfg,
		g:          grid.New(cfg),
		src:        rng.New(cfg.Seed),
		moveProb:   cfg.MoveProbability(),
		convection: cfg.Convection,
		reflecting: cfg.Boundary == config.BoundaryReflecting,
		state:      stateNew,
	}
}

func (e *BatchEngine) AddMetric(m Metric) { e.metrics = append(e.metrics, m) }

func (e *BatchEngine) inject(n int) {
	for i := 0; i < n; i++ {
		x, y := e.g.SampleHotspot(e.src)
		e.xs = append(e.xs, x)
		e.ys = append(e.ys, y)
	}
}

func (e *BatchEngine) Run(ctx context.Context) (*RunResult, error) {
	if e.state != stateNew {
		return nil, ErrFinished
	}

	steps := e.cfg.Steps()
	correction := e.cfg.CorrectionFactor()
	e.acc = grid.NewField(e.g.Nx, e.g.Ny)

	result := &RunResult{
		Config:       e.cfg,
		Seed:         e.cfg.Seed,
		Steps:        steps,
		Times:        make([]float64, 0, steps),
		PacketCounts: make([]int, 0, steps),
		HotspotTemps: make([]float64, 0, steps),
		Metrics:      make(map[string]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	seedN := e.cfg.NPackets / 10
	if seedN == 0 && e.cfg.NPackets > 0 {
		seedN = 1
	}
	e.inject(seedN)
	result.Injected += seedN
	e.state = stateRunning

	// Scratch buffers reused across steps.
	var survivors, movers []int

	for step := 0; step < steps; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		e.inject(e.cfg.Q)
		result.Injected += e.cfg.Q
		n := len(e.xs)

		// Phase 1: convection trials for the whole batch.
		survivors = survivors[:0]
		for i := 0; i < n; i++ {
			if e.src.Float64() < e.convection {
				result.Convected++
				continue
			}
			survivors = append(survivors, i)
		}

		// Phase 2: movement decisions for survivors.
		movers = movers[:0]
		for _, i := range survivors {
			if e.src.Float64() < e.moveProb {
				movers = append(movers, i)
			}
		}

		// Phase 3: directions and boundary handling for movers. Packets
		// absorbed at the edge are flagged with a negative x.
		for _, i := range movers {
			d := grid.Directions[e.src.Intn(4)]
			nx, ny := e.xs[i]+d[0], e.ys[i]+d[1]
			if !e.g.InBounds(nx, ny) {
				if e.reflecting {
					continue
				}
				result.BoundaryLost++
				e.xs[i] = -1
				continue
			}
			e.xs[i], e.ys[i] = nx, ny
		}

		// Compact the coordinate slices to the surviving packets.
		w := 0
		for _, i := range survivors {
			if e.xs[i] < 0 {
				continue
			}
			e.xs[w] = e.xs[i]
			e.ys[w] = e.ys[i]
			w++
		}
		e.xs = e.xs[:w]
		e.ys = e.ys[:w]

		// Deposit pass.
		inSpot := 0
		for i := 0; i < w; i++ {
			x, y := e.xs[i], e.ys[i]
			if !e.g.InBounds(x, y) {
				return nil, fmt.Errorf("%w: (%d,%d) at step %d", ErrDomainEscape, x, y, step)
			}
			e.acc.Add(x, y, 1)
			if e.g.InHotspot(x, y) {
				inSpot++
			}
		}

		t := float64(step+1) * e.cfg.Dt
		temp := float64(inSpot) / float64(e.g.HotspotCells()) * correction

		result.Times = append(result.Times, t)
		result.PacketCounts = append(result.PacketCounts, w)
		result.HotspotTemps = append(result.HotspotTemps, temp)

		for _, m := range e.metrics {
			m.Observe(step, t, w, temp)
		}

		if (step+1)%e.cfg.OutputInterval == 0 {
			result.Snapshots = append(result.Snapshots, e.acc.Clone())
			result.SnapshotTimes = append(result.SnapshotTimes, t)
		}
	}

	result.Accumulator = e.acc.Clone()
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	e.state = stateFinished
	return result, nil
}
