package sim

import (
	"context"
	"sync"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/rng"
)

// Ensemble runs n independent simulations of the same configuration with
// pre-assigned seeds seedStart..seedStart+n-1. Each run owns its
// population, accumulator and RNG stream, so runs dispatch across
// goroutines with no synchronization beyond the join.
type Ensemble struct {
	cfg       *config.Config
	runs      int
	seedStart int64
}

func NewEnsemble(cfg *config.Config, runs int, seedStart int64) *Ensemble {
	return &Ensemble{cfg: cfg, runs: runs, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context) ([]*RunResult, error) {
	results := make([]*RunResult, e.runs)
	errs := make([]error, e.runs)

	var wg sync.WaitGroup
	for i := 0; i < e.runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := *e.cfg
			cfgCopy.Seed = rng.ForRun(e.seedStart, idx)

			engine, err := New(&cfgCopy)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = engine.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
