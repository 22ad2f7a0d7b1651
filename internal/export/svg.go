// Package export renders runs to standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/heatmc/internal/grid"
)

// FieldToSVG renders a temperature field as a heatmap, one rect per
// cell, colored from black through red to yellow by relative value.
func FieldToSVG(field *grid.Field, cellSize int) string {
	if field == nil || field.Nx == 0 || field.Ny == 0 {
		return ""
	}

	width := field.Ny * cellSize
	height := field.Nx * cellSize
	max := field.Max()

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for x := 0; x < field.Nx; x++ {
		for y := 0; y < field.Ny; y++ {
			v := 0.0
			if max > 0 {
				v = field.At(x, y) / max
			}
			if v == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>
`, y*cellSize, x*cellSize, cellSize, cellSize, heatColor(v)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// heatColor maps a relative value in [0,1] onto a black-red-yellow ramp.
func heatColor(v float64) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	var r, g int
	if v < 0.5 {
		r = int(255 * v * 2)
	} else {
		r = 255
		g = int(255 * (v - 0.5) * 2)
	}
	return fmt.Sprintf("#%02x%02x00", r, g)
}

// SeriesToSVG renders a time series as a line plot.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	if len(times) < 2 || len(times) != len(values) {
		return ""
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range times {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
