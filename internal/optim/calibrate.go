// Package optim tunes free simulation parameters against measurable
// targets. The convection probability is not a first-principles number;
// it is calibrated so the fraction of packets lost to air matches a
// target from heat-sink loss data.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/metrics"
	"github.com/san-kum/heatmc/internal/sim"
)

// LossFraction is the share of injected packets removed by convection
// over a whole run.
func LossFraction(r *sim.RunResult) float64 {
	if r.Injected == 0 {
		return 0
	}
	return float64(r.Convected) / float64(r.Injected)
}

// CalibrateConvection scans candidate probabilities and returns the one
// whose ensemble-mean loss fraction lands closest to target. Candidates
// are evaluated with runsPer realizations each, seeded in disjoint
// blocks from the base seed.
func CalibrateConvection(ctx context.Context, base *config.Config, target float64, candidates []float64, runsPer int) (float64, float64, error) {
	if target < 0 || target > 1 {
		return 0, 0, fmt.Errorf("optim: target loss fraction %v outside [0,1]", target)
	}
	if len(candidates) == 0 {
		return 0, 0, fmt.Errorf("optim: no candidate probabilities")
	}
	if runsPer < 1 {
		return 0, 0, fmt.Errorf("optim: need at least 1 run per candidate, got %d", runsPer)
	}

	best := math.Inf(1)
	bestProb := candidates[0]
	bestLoss := 0.0

	for i, p := range candidates {
		cfg := *base
		cfg.Convection = p
		if err := cfg.Validate(); err != nil {
			return 0, 0, fmt.Errorf("optim: candidate %v: %w", p, err)
		}

		ens := sim.NewEnsemble(&cfg, runsPer, base.Seed+int64(i*runsPer))
		results, err := ens.Run(ctx)
		if err != nil {
			return 0, 0, err
		}

		loss := metrics.Mean(metrics.Collect(results, LossFraction))
		if gap := math.Abs(loss - target); gap < best {
			best = gap
			bestProb = p
			bestLoss = loss
		}
	}

	return bestProb, bestLoss, nil
}
