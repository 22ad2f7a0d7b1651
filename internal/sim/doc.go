// Package sim provides the Monte Carlo time-stepping engines.
//
// A run advances an initial hotspot-seeded packet population through a
// fixed number of timesteps: inject, step every live packet, deposit
// residence counts into the accumulator, drop the absorbed. Two engines
// implement the same [Engine] contract:
//
//   - [Simulator]: one packet at a time; bit-reproducible per seed
//   - [BatchEngine]: columnar batch processing for large populations;
//     statistically equivalent, different RNG consumption order
//
// Engines are not safe for concurrent use and run exactly once. For
// independent parallel runs use [Ensemble], which assigns each run its
// own seed and state.
package sim
