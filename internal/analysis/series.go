// Package analysis provides statistical diagnostics for simulation
// series: autocorrelation, integrated autocorrelation time, spectral
// estimates and equilibration detection.
//
// Monte Carlo series are serially correlated, so naive error bars on a
// single run understate the true uncertainty. The integrated
// autocorrelation time gives the effective sample size:
//
//	tau := analysis.IntegratedAutocorrTime(temps)
//	nEff := float64(len(temps)) / tau
package analysis

import "math"

// Autocorrelation computes the normalized autocorrelation function up
// to maxLag. Lag 0 is always 1 for a non-constant series.
func Autocorrelation(data []float64, maxLag int) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	var c0 float64
	for _, v := range data {
		d := v - mean
		c0 += d * d
	}
	c0 /= float64(n)

	acf := make([]float64, maxLag+1)
	if c0 == 0 {
		return acf
	}

	for lag := 0; lag <= maxLag; lag++ {
		var c float64
		for i := 0; i < n-lag; i++ {
			c += (data[i] - mean) * (data[i+lag] - mean)
		}
		acf[lag] = c / float64(n) / c0
	}
	return acf
}

// IntegratedAutocorrTime estimates tau = 1 + 2*sum(acf), truncating the
// sum at the first non-positive coefficient. A white-noise series gives
// tau near 1.
func IntegratedAutocorrTime(data []float64) float64 {
	maxLag := len(data) / 4
	if maxLag < 1 {
		return 1
	}
	acf := Autocorrelation(data, maxLag)

	tau := 1.0
	for lag := 1; lag < len(acf); lag++ {
		if acf[lag] <= 0 {
			break
		}
		tau += 2 * acf[lag]
	}
	return tau
}

// EquilibrationStep finds the first step where the series enters and
// stays within tolerance of its tail mean. Returns len(data) when the
// series never settles.
func EquilibrationStep(data []float64, tolerance float64) int {
	n := len(data)
	if n == 0 {
		return 0
	}

	tail := data[n*4/5:]
	if len(tail) == 0 {
		tail = data
	}
	target := 0.0
	for _, v := range tail {
		target += v
	}
	target /= float64(len(tail))

	for i := 0; i < n; i++ {
		settled := true
		for j := i; j < n; j++ {
			if math.Abs(data[j]-target) > tolerance {
				settled = false
				break
			}
		}
		if settled {
			return i
		}
	}
	return n
}
