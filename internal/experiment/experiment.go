// Package experiment orchestrates multi-run studies: material
// comparisons, parameter sweeps and convergence analyses. Each study
// point is an independent ensemble with pre-assigned seeds, so a whole
// study reproduces exactly from its base seed.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/metrics"
	"github.com/san-kum/heatmc/internal/sim"
)

// Point is one study point: a label, the swept value (zero where no
// parameter was swept), the aggregated observable and the raw runs.
type Point struct {
	Label   string
	Value   float64
	Summary metrics.Summary
	Runs    []*sim.RunResult
}

// Runner executes ensembles against variations of a base configuration.
type Runner struct {
	base       *config.Config
	runsPer    int
	seedStart  int64
	observable metrics.Observable
}

// NewRunner builds a runner that executes runsPer realizations per study
// point. Seeds are assigned sequentially from the base configuration's
// seed, one block per point.
func NewRunner(base *config.Config, runsPer int) (*Runner, error) {
	if runsPer < 2 {
		return nil, fmt.Errorf("experiment: %w", metrics.ErrInsufficientRuns)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		base:       base,
		runsPer:    runsPer,
		seedStart:  base.Seed,
		observable: metrics.SteadyStateTemp,
	}, nil
}

// SetObservable replaces the per-run scalar aggregated at each point.
func (r *Runner) SetObservable(obs metrics.Observable) { r.observable = obs }

// next returns the seed block for the i-th study point.
func (r *Runner) next(i int) int64 {
	return r.seedStart + int64(i*r.runsPer)
}

func (r *Runner) runPoint(ctx context.Context, cfg *config.Config, label string, value float64, idx int) (Point, error) {
	if err := cfg.Validate(); err != nil {
		return Point{}, fmt.Errorf("experiment %q: %w", label, err)
	}
	ens := sim.NewEnsemble(cfg, r.runsPer, r.next(idx))
	results, err := ens.Run(ctx)
	if err != nil {
		return Point{}, fmt.Errorf("experiment %q: %w", label, err)
	}
	summary, err := metrics.Summarize(metrics.Collect(results, r.observable))
	if err != nil {
		return Point{}, fmt.Errorf("experiment %q: %w", label, err)
	}
	return Point{Label: label, Value: value, Summary: summary, Runs: results}, nil
}

// CompareMaterials runs one ensemble per named material, holding every
// other parameter at the base configuration.
func (r *Runner) CompareMaterials(ctx context.Context, materials []string) ([]Point, error) {
	points := make([]Point, 0, len(materials))
	for i, name := range materials {
		m, ok := config.Materials[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown material %q (available: %v)",
				config.ErrInvalidConfig, name, config.ListMaterials())
		}
		cfg := *r.base
		cfg.Alpha = m.Alpha
		p, err := r.runPoint(ctx, &cfg, name, m.Alpha, i)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// Sweep varies one configuration field across the given values. The
// field name must be one of the registered sweepable parameters.
func (r *Runner) Sweep(ctx context.Context, field string, values []float64) ([]Point, error) {
	apply, ok := sweepable[field]
	if !ok {
		return nil, fmt.Errorf("experiment: unknown sweep field %q (have %v)", field, SweepFields())
	}
	points := make([]Point, 0, len(values))
	for i, v := range values {
		cfg := *r.base
		if err := apply(&cfg, v); err != nil {
			return nil, fmt.Errorf("experiment: sweep %s=%v: %w", field, v, err)
		}
		label := fmt.Sprintf("%s=%g", field, v)
		p, err := r.runPoint(ctx, &cfg, label, v, i)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// ConvergenceStudy measures how the ensemble standard error shrinks as
// the packet count grows. With independent walkers the error of the
// mean falls as 1/sqrt(N).
func (r *Runner) ConvergenceStudy(ctx context.Context, packetCounts []int) ([]Point, error) {
	obs := r.observable
	r.observable = metrics.MeanResidence
	defer func() { r.observable = obs }()

	points := make([]Point, 0, len(packetCounts))
	for i, n := range packetCounts {
		if n <= 0 {
			return nil, fmt.Errorf("experiment: packet count must be positive, got %d", n)
		}
		cfg := *r.base
		cfg.NPackets = n
		label := fmt.Sprintf("N=%d", n)
		p, err := r.runPoint(ctx, &cfg, label, float64(n), i)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}
