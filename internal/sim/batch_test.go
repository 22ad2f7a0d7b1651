package sim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/heatmc/internal/config"
)

// The two engines consume randomness in different orders, so agreement
// is distributional: ensemble means of the same observable must match
// within a few standard errors.
func TestBatchMatchesPacketEngineDistributionally(t *testing.T) {
	if testing.Short() {
		t.Skip("ensemble comparison is slow")
	}

	const runs = 24
	base := quickConfig()
	base.NPackets = 400
	base.Q = 10

	means := make(map[string]float64)
	for _, engine := range []string{config.EnginePacket, config.EngineBatch} {
		cfg := *base
		cfg.Engine = engine

		results, err := NewEnsemble(&cfg, runs, 1000).Run(context.Background())
		if err != nil {
			t.Fatalf("%s ensemble failed: %v", engine, err)
		}

		sum := 0.0
		for _, r := range results {
			sum += r.Accumulator.Total() / float64(r.Injected)
		}
		means[engine] = sum / runs
	}

	p, b := means[config.EnginePacket], means[config.EngineBatch]
	if p == 0 {
		t.Fatal("packet engine produced empty accumulators")
	}
	if rel := math.Abs(p-b) / p; rel > 0.10 {
		t.Errorf("engines disagree: packet=%.3f batch=%.3f (rel %.3f)", p, b, rel)
	}
}

func TestEnsembleAssignsDistinctSeeds(t *testing.T) {
	cfg := quickConfig()
	results, err := NewEnsemble(cfg, 4, 500).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[int64]bool)
	for _, r := range results {
		if seen[r.Seed] {
			t.Fatalf("seed %d assigned twice", r.Seed)
		}
		seen[r.Seed] = true
	}
	for i := int64(500); i < 504; i++ {
		if !seen[i] {
			t.Errorf("expected seed %d in ensemble", i)
		}
	}
}

func TestEnsembleIsReproducible(t *testing.T) {
	cfg := quickConfig()

	a, err := NewEnsemble(cfg, 3, 42).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEnsemble(cfg, 3, 42).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i].Accumulator.Total() != b[i].Accumulator.Total() {
			t.Fatalf("ensemble run %d not reproducible", i)
		}
	}
}

func TestEnsemblePropagatesConfigError(t *testing.T) {
	cfg := quickConfig()
	cfg.Q = -1

	if _, err := NewEnsemble(cfg, 2, 1).Run(context.Background()); err == nil {
		t.Error("expected config error from ensemble")
	}
}
