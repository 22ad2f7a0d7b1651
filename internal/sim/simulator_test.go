package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/heatmc/internal/config"
)

func quickConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.TMax = 0.4 // 200 steps
	cfg.NPackets = 100
	cfg.Q = 5
	cfg.OutputInterval = 50
	return cfg
}

func mustRun(t *testing.T, cfg *config.Config) *RunResult {
	t.Helper()
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return result
}

func TestRunCompletesAllSteps(t *testing.T) {
	cfg := quickConfig()
	result := mustRun(t, cfg)

	if result.Steps != cfg.Steps() {
		t.Errorf("expected %d steps, got %d", cfg.Steps(), result.Steps)
	}
	if len(result.PacketCounts) != cfg.Steps() {
		t.Errorf("expected %d series entries, got %d", cfg.Steps(), len(result.PacketCounts))
	}
	if result.Accumulator == nil {
		t.Fatal("missing accumulator")
	}
	if result.Accumulator.Total() == 0 {
		t.Error("accumulator empty after run with injection")
	}
	wantSnaps := cfg.Steps() / cfg.OutputInterval
	if len(result.Snapshots) != wantSnaps {
		t.Errorf("expected %d snapshots, got %d", wantSnaps, len(result.Snapshots))
	}
}

func TestDeterminism(t *testing.T) {
	for _, engine := range []string{config.EnginePacket, config.EngineBatch} {
		t.Run(engine, func(t *testing.T) {
			cfg := quickConfig()
			cfg.Engine = engine

			a := mustRun(t, cfg)
			b := mustRun(t, cfg)

			if a.Injected != b.Injected || a.Convected != b.Convected || a.BoundaryLost != b.BoundaryLost {
				t.Fatal("totals differ between identical runs")
			}
			for i := range a.PacketCounts {
				if a.PacketCounts[i] != b.PacketCounts[i] {
					t.Fatalf("packet series diverged at step %d", i)
				}
				if a.HotspotTemps[i] != b.HotspotTemps[i] {
					t.Fatalf("temperature series diverged at step %d", i)
				}
			}
			av, bv := a.Accumulator.Values(), b.Accumulator.Values()
			for i := range av {
				if av[i] != bv[i] {
					t.Fatalf("accumulator cell %d differs", i)
				}
			}
		})
	}
}

func TestSeedChangesOutcome(t *testing.T) {
	cfg := quickConfig()
	a := mustRun(t, cfg)

	cfg2 := quickConfig()
	cfg2.Seed = cfg.Seed + 1
	b := mustRun(t, cfg2)

	av, bv := a.Accumulator.Values(), b.Accumulator.Values()
	for i := range av {
		if av[i] != bv[i] {
			return
		}
	}
	t.Error("different seeds produced identical accumulators")
}

func TestNoSpontaneousPackets(t *testing.T) {
	for _, engine := range []string{config.EnginePacket, config.EngineBatch} {
		t.Run(engine, func(t *testing.T) {
			cfg := quickConfig()
			cfg.Engine = engine
			cfg.Q = 0
			cfg.NPackets = 0

			result := mustRun(t, cfg)

			if result.Injected != 0 {
				t.Errorf("expected zero injections, got %d", result.Injected)
			}
			if result.Accumulator.Total() != 0 {
				t.Error("accumulator grew without any packets")
			}
			for _, n := range result.PacketCounts {
				if n != 0 {
					t.Fatal("phantom live packets recorded")
				}
			}
		})
	}
}

func TestConvectionCertaintyAbsorbsWithinOneStep(t *testing.T) {
	for _, engine := range []string{config.EnginePacket, config.EngineBatch} {
		t.Run(engine, func(t *testing.T) {
			cfg := quickConfig()
			cfg.Engine = engine
			cfg.Convection = 1.0

			result := mustRun(t, cfg)

			// Every packet dies in the step it appears, so the live
			// population is always zero and nothing ever deposits.
			for step, n := range result.PacketCounts {
				if n != 0 {
					t.Fatalf("live packets at step %d with p=1.0", step)
				}
			}
			if result.Accumulator.Total() != 0 {
				t.Error("deposits recorded with p=1.0")
			}
			if result.Convected != result.Injected {
				t.Errorf("expected all %d injected packets convected, got %d",
					result.Injected, result.Convected)
			}
		})
	}
}

func TestExtinctionIsLegal(t *testing.T) {
	cfg := quickConfig()
	cfg.Q = 0
	cfg.NPackets = 50
	cfg.Convection = 0.5 // population dies out in a few steps

	result := mustRun(t, cfg)

	if result.FinalPackets() != 0 {
		t.Errorf("expected extinct population, got %d", result.FinalPackets())
	}
	if len(result.PacketCounts) != cfg.Steps() {
		t.Error("run must still complete all steps after extinction")
	}
}

func TestEngineRunsOnce(t *testing.T) {
	cfg := quickConfig()
	engine, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Run(context.Background()); !errors.Is(err, ErrFinished) {
		t.Errorf("expected ErrFinished on second run, got %v", err)
	}
}

func TestInvalidConfigRejectedBeforeRun(t *testing.T) {
	cfg := quickConfig()
	cfg.Convection = 1.5

	if _, err := New(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	cfg := quickConfig()
	engine, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizedField(t *testing.T) {
	cfg := quickConfig()
	result := mustRun(t, cfg)

	norm := result.NormalizedField()
	want := result.Accumulator.Total() / float64(result.Injected)
	if got := norm.Total(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("normalized total %f, want %f", got, want)
	}
	// Normalization must not touch the original accumulator.
	if result.Accumulator.Total() <= norm.Total() {
		t.Error("accumulator appears to have been scaled in place")
	}
}

type countingMetric struct {
	observations int
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(step int, t float64, live int, temp float64) {
	c.observations++
}
func (c *countingMetric) Value() float64 { return float64(c.observations) }
func (c *countingMetric) Reset()         { c.observations = 0 }

func TestMetricsObservedEachStep(t *testing.T) {
	cfg := quickConfig()
	engine, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	m := &countingMetric{}
	engine.AddMetric(m)

	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if m.observations != cfg.Steps() {
		t.Errorf("expected %d observations, got %d", cfg.Steps(), m.observations)
	}
	if result.Metrics["count"] != float64(cfg.Steps()) {
		t.Error("metric value missing from result")
	}
}
