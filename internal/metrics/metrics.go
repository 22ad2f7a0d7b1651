// Package metrics derives observables from engine state: per-step
// collectors implementing [sim.Metric], and pure cross-run statistics
// for aggregating independent results. Nothing here mutates a result or
// draws randomness.
package metrics

import "github.com/san-kum/heatmc/internal/sim"

// PeakTemperature records the maximum hotspot temperature seen.
type PeakTemperature struct {
	peak float64
}

func NewPeakTemperature() *PeakTemperature { return &PeakTemperature{} }

func (p *PeakTemperature) Name() string { return "peak_temperature" }

func (p *PeakTemperature) Observe(step int, t float64, live int, temp float64) {
	if temp > p.peak {
		p.peak = temp
	}
}

func (p *PeakTemperature) Value() float64 { return p.peak }

func (p *PeakTemperature) Reset() { p.peak = 0 }

// SteadyState averages the hotspot temperature over the final fraction
// of the run, once transients have decayed.
type SteadyState struct {
	totalSteps int
	fraction   float64
	sum        float64
	count      int
}

// NewSteadyState builds a collector for a run of totalSteps that averages
// over the last fraction (typically 0.2).
func NewSteadyState(totalSteps int, fraction float64) *SteadyState {
	return &SteadyState{totalSteps: totalSteps, fraction: fraction}
}

func (s *SteadyState) Name() string { return "steady_state_temperature" }

func (s *SteadyState) Observe(step int, t float64, live int, temp float64) {
	if float64(step) >= float64(s.totalSteps)*(1-s.fraction) {
		s.sum += temp
		s.count++
	}
}

func (s *SteadyState) Value() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

func (s *SteadyState) Reset() {
	s.sum = 0
	s.count = 0
}

// MeanPopulation tracks the time-averaged live packet count.
type MeanPopulation struct {
	sum   float64
	count int
}

func NewMeanPopulation() *MeanPopulation { return &MeanPopulation{} }

func (m *MeanPopulation) Name() string { return "mean_population" }

func (m *MeanPopulation) Observe(step int, t float64, live int, temp float64) {
	m.sum += float64(live)
	m.count++
}

func (m *MeanPopulation) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

func (m *MeanPopulation) Reset() {
	m.sum = 0
	m.count = 0
}

// Default returns the standard collectors for a run of the given length.
func Default(totalSteps int) []sim.Metric {
	return []sim.Metric{
		NewPeakTemperature(),
		NewSteadyState(totalSteps, 0.2),
		NewMeanPopulation(),
	}
}
