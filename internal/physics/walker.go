package physics

import (
	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/grid"
	"github.com/san-kum/heatmc/internal/rng"
)

// Walker applies the per-packet transition rule. It holds only immutable
// parameters, so one Walker serves every packet of a run.
type Walker struct {
	g          *grid.Grid
	moveProb   float64
	convection float64
	reflecting bool
}

func NewWalker(cfg *config.Config, g *grid.Grid) *Walker {
	return &Walker{
		g:          g,
		moveProb:   cfg.MoveProbability(),
		convection: cfg.Convection,
		reflecting: cfg.Boundary == config.BoundaryReflecting,
	}
}

// Step advances one packet by one timestep and reports whether it was
// absorbed. The convection trial runs first and is independent of
// position; a packet that survives it may take a lattice step, and a
// step off an absorbing grid removes it.
func (w *Walker) Step(x, y int, src *rng.Source) (int, int, bool) {
	if src.Float64() < w.convection {
		return x, y, true
	}

	if src.Float64() < w.moveProb {
		d := grid.Directions[src.Intn(4)]
		nx, ny := x+d[0], y+d[1]
		if !w.g.InBounds(nx, ny) {
			if w.reflecting {
				return x, y, false
			}
			return nx, ny, true
		}
		return nx, ny, false
	}

	return x, y, false
}

// MoveProbability exposes the derived step probability, mostly for
// reporting.
func (w *Walker) MoveProbability() float64 { return w.moveProb }
