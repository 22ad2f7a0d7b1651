package optim

import (
	"context"
	"testing"

	"github.com/san-kum/heatmc/internal/config"
)

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.TMax = 0.1
	cfg.NPackets = 200
	cfg.Q = 5
	cfg.OutputInterval = 25
	return cfg
}

func TestCalibrateConvectionPicksClosest(t *testing.T) {
	// A high target loss fraction must select the strongest candidate;
	// a near-zero target must select the weakest.
	cfg := baseConfig()
	candidates := []float64{0.001, 0.05, 0.3}

	prob, loss, err := CalibrateConvection(context.Background(), cfg, 0.95, candidates, 3)
	if err != nil {
		t.Fatal(err)
	}
	if prob != 0.3 {
		t.Errorf("high target picked p=%v, want 0.3 (loss %v)", prob, loss)
	}

	prob, loss, err = CalibrateConvection(context.Background(), cfg, 0.0, candidates, 3)
	if err != nil {
		t.Fatal(err)
	}
	if prob != 0.001 {
		t.Errorf("zero target picked p=%v, want 0.001 (loss %v)", prob, loss)
	}
}

func TestCalibrateConvectionRejectsBadInput(t *testing.T) {
	cfg := baseConfig()
	if _, _, err := CalibrateConvection(context.Background(), cfg, 1.5, []float64{0.1}, 2); err == nil {
		t.Error("expected error for target above 1")
	}
	if _, _, err := CalibrateConvection(context.Background(), cfg, 0.5, nil, 2); err == nil {
		t.Error("expected error for empty candidates")
	}
	if _, _, err := CalibrateConvection(context.Background(), cfg, 0.5, []float64{2.0}, 2); err == nil {
		t.Error("expected error for invalid candidate probability")
	}
}
