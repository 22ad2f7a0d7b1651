// Package viz renders simulation output in the terminal: ASCII line
// plots of the per-step series, a colored heatmap of the temperature
// field, and a live Bubble Tea view of a running simulation.
package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/heatmc/internal/grid"
)

// PlotSeries draws a time series as an ASCII chart.
func PlotSeries(values []float64, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// RenderField draws the field as a colored heatmap, hottest cells in
// yellow. Rows run along x, columns along y.
func RenderField(field *grid.Field) string {
	if field == nil || field.Nx == 0 {
		return ""
	}
	max := field.Max()

	var sb strings.Builder
	for x := 0; x < field.Nx; x++ {
		for y := 0; y < field.Ny; y++ {
			v := 0.0
			if max > 0 {
				v = field.At(x, y) / max
			}
			sb.WriteString(heatCell(v))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
