package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/heatmc/internal/sim"
)

// ErrInsufficientRuns reports a variance estimate requested from fewer
// than two independent runs. It is surfaced, never silently zero.
var ErrInsufficientRuns = errors.New("metrics: need at least 2 runs to estimate error")

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std is the unbiased sample standard deviation (n−1 denominator).
func Std(xs []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, fmt.Errorf("%w: got %d", ErrInsufficientRuns, len(xs))
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1)), nil
}

// SEM is the standard error of the mean, σ/√n.
func SEM(xs []float64) (float64, error) {
	std, err := Std(xs)
	if err != nil {
		return 0, err
	}
	return std / math.Sqrt(float64(len(xs))), nil
}

// Summary bundles the three aggregate statistics for one observable.
type Summary struct {
	Mean float64
	Std  float64
	SEM  float64
	N    int
}

func Summarize(xs []float64) (Summary, error) {
	std, err := Std(xs)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Mean: Mean(xs),
		Std:  std,
		SEM:  std / math.Sqrt(float64(len(xs))),
		N:    len(xs),
	}, nil
}

// Observable extracts one scalar from a finished run.
type Observable func(*sim.RunResult) float64

// SteadyStateTemp averages the final 20% of the hotspot series.
func SteadyStateTemp(r *sim.RunResult) float64 {
	n := len(r.HotspotTemps)
	if n == 0 {
		return 0
	}
	start := int(0.8 * float64(n))
	return Mean(r.HotspotTemps[start:])
}

// PeakTemp is the maximum of the hotspot series.
func PeakTemp(r *sim.RunResult) float64 {
	return r.PeakHotspotTemp()
}

// MeanResidence is the accumulator total per injected packet, the
// per-run observable used by convergence studies.
func MeanResidence(r *sim.RunResult) float64 {
	if r.Injected == 0 {
		return 0
	}
	return r.Accumulator.Total() / float64(r.Injected)
}

// Collect applies obs to every run.
func Collect(results []*sim.RunResult, obs Observable) []float64 {
	xs := make([]float64, len(results))
	for i, r := range results {
		xs[i] = obs(r)
	}
	return xs
}
