package metrics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatmc/internal/grid"
	"github.com/san-kum/heatmc/internal/metrics"
	"github.com/san-kum/heatmc/internal/sim"
)

var _ = Describe("cross-run statistics", func() {
	Describe("Mean", func() {
		It("averages the samples", func() {
			Expect(metrics.Mean([]float64{1, 2, 3, 4})).To(BeNumerically("~", 2.5, 1e-12))
		})

		It("is zero for an empty slice", func() {
			Expect(metrics.Mean(nil)).To(BeZero())
		})
	})

	Describe("Std", func() {
		It("uses the n-1 denominator", func() {
			// Samples 2,4,4,4,5,5,7,9: sum of squared deviations is 32,
			// so the sample variance is 32/7.
			std, err := metrics.Std([]float64{2, 4, 4, 4, 5, 5, 7, 9})
			Expect(err).NotTo(HaveOccurred())
			Expect(std).To(BeNumerically("~", math.Sqrt(32.0/7.0), 1e-12))
		})

		It("rejects fewer than two samples", func() {
			_, err := metrics.Std([]float64{1})
			Expect(err).To(MatchError(metrics.ErrInsufficientRuns))
		})
	})

	Describe("SEM", func() {
		It("divides the sample deviation by the square root of n", func() {
			xs := []float64{1, 2, 3, 4, 5}
			std, err := metrics.Std(xs)
			Expect(err).NotTo(HaveOccurred())
			sem, err := metrics.SEM(xs)
			Expect(err).NotTo(HaveOccurred())
			Expect(sem).To(BeNumerically("~", std/math.Sqrt(5), 1e-12))
		})

		It("rejects fewer than two samples", func() {
			_, err := metrics.SEM(nil)
			Expect(err).To(MatchError(metrics.ErrInsufficientRuns))
		})
	})

	Describe("Summarize", func() {
		It("bundles mean, deviation and error with the sample count", func() {
			s, err := metrics.Summarize([]float64{10, 12, 14, 16})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Mean).To(BeNumerically("~", 13, 1e-12))
			Expect(s.N).To(Equal(4))
			Expect(s.SEM).To(BeNumerically("~", s.Std/2, 1e-12))
		})
	})
})

var _ = Describe("run observables", func() {
	makeRun := func(temps []float64, injected int, deposits float64) *sim.RunResult {
		acc := grid.NewField(4, 4)
		acc.Add(1, 1, deposits)
		return &sim.RunResult{
			HotspotTemps: temps,
			Injected:     injected,
			Accumulator:  acc,
		}
	}

	It("SteadyStateTemp averages the final fifth of the series", func() {
		temps := make([]float64, 10)
		for i := range temps {
			temps[i] = float64(i)
		}
		// Last 20% of 10 samples is indices 8 and 9.
		r := makeRun(temps, 10, 0)
		Expect(metrics.SteadyStateTemp(r)).To(BeNumerically("~", 8.5, 1e-12))
	})

	It("SteadyStateTemp handles an empty series", func() {
		Expect(metrics.SteadyStateTemp(makeRun(nil, 0, 0))).To(BeZero())
	})

	It("MeanResidence normalizes by injected packets", func() {
		r := makeRun(nil, 50, 125)
		Expect(metrics.MeanResidence(r)).To(BeNumerically("~", 2.5, 1e-12))
	})

	It("MeanResidence is zero when nothing was injected", func() {
		Expect(metrics.MeanResidence(makeRun(nil, 0, 0))).To(BeZero())
	})

	It("Collect maps an observable over every run", func() {
		runs := []*sim.RunResult{
			makeRun(nil, 10, 10),
			makeRun(nil, 10, 30),
		}
		xs := metrics.Collect(runs, metrics.MeanResidence)
		Expect(xs).To(Equal([]float64{1, 3}))
	})
})

var _ = Describe("per-step collectors", func() {
	It("PeakTemperature keeps the maximum observed", func() {
		p := metrics.NewPeakTemperature()
		p.Observe(0, 0, 5, 1.0)
		p.Observe(1, 0.1, 5, 3.0)
		p.Observe(2, 0.2, 5, 2.0)
		Expect(p.Value()).To(Equal(3.0))
		p.Reset()
		Expect(p.Value()).To(BeZero())
	})

	It("SteadyState ignores the transient portion of the run", func() {
		s := metrics.NewSteadyState(100, 0.2)
		for step := 0; step < 100; step++ {
			s.Observe(step, 0, 0, float64(step))
		}
		// Steps 80..99 average to 89.5.
		Expect(s.Value()).To(BeNumerically("~", 89.5, 1e-12))
	})

	It("MeanPopulation averages the live count over all steps", func() {
		m := metrics.NewMeanPopulation()
		m.Observe(0, 0, 10, 0)
		m.Observe(1, 0, 20, 0)
		Expect(m.Value()).To(BeNumerically("~", 15, 1e-12))
	})

	It("Default wires the standard collectors", func() {
		ms := metrics.Default(100)
		names := make([]string, len(ms))
		for i, m := range ms {
			names[i] = m.Name()
		}
		Expect(names).To(ConsistOf(
			"peak_temperature", "steady_state_temperature", "mean_population"))
	})
})
