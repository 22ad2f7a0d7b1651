package grid

import "math"

// Field is a dense scalar field over the grid, row-major. It serves both
// as the residence-count accumulator during a run and as the normalized
// temperature estimate afterwards.
type Field struct {
	Nx, Ny int
	data   []float64
}

func NewField(nx, ny int) *Field {
	return &Field{Nx: nx, Ny: ny, data: make([]float64, nx*ny)}
}

func (f *Field) At(x, y int) float64 { return f.data[x*f.Ny+y] }

func (f *Field) Add(x, y int, v float64) {
	f.data[x*f.Ny+y] += v
}

func (f *Field) Clone() *Field {
	c := NewField(f.Nx, f.Ny)
	copy(c.data, f.data)
	return c
}

// Values exposes the backing slice for export; callers must not mutate.
func (f *Field) Values() []float64 { return f.data }

func (f *Field) Total() float64 {
	sum := 0.0
	for _, v := range f.data {
		sum += v
	}
	return sum
}

func (f *Field) Mean() float64 {
	if len(f.data) == 0 {
		return 0
	}
	return f.Total() / float64(len(f.data))
}

func (f *Field) Max() float64 {
	max := 0.0
	for _, v := range f.data {
		if v > max {
			max = v
		}
	}
	return max
}

func (f *Field) Std() float64 {
	if len(f.data) == 0 {
		return 0
	}
	mean := f.Mean()
	sum := 0.0
	for _, v := range f.data {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(f.data)))
}

// Scale returns a copy with every cell multiplied by k.
func (f *Field) Scale(k float64) *Field {
	c := f.Clone()
	for i := range c.data {
		c.data[i] *= k
	}
	return c
}

// HotspotMean averages the field over the hotspot disk of g.
func (f *Field) HotspotMean(g *Grid) float64 {
	if g.nSpot == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			if g.hotspot[i*g.Ny+j] {
				sum += f.At(i, j)
			}
		}
	}
	return sum / float64(g.nSpot)
}

// SecondMoment is the field-weighted mean squared distance (in cells)
// from (cx, cy), the spatial spread of the temperature estimate.
func (f *Field) SecondMoment(cx, cy int) float64 {
	total := 0.0
	weighted := 0.0
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			v := f.At(i, j)
			if v == 0 {
				continue
			}
			dx, dy := float64(i-cx), float64(j-cy)
			weighted += v * (dx*dx + dy*dy)
			total += v
		}
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
