// Package physics models a single heat packet's stochastic transition.
//
// A packet performs a biased lattice random walk: each timestep it first
// survives (or not) a memoryless convection trial, then takes a step to
// one of its 4 neighbors with probability p_move = 4αΔt/Δx². That scaling
// makes the aggregate packet density statistically equivalent to the heat
// equation in the large-N limit.
//
// Both removal paths, convection loss and leaving an absorbing boundary,
// are terminal: an absorbed packet never deposits again.
package physics
