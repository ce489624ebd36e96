package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/birdsim/internal/surface"
)

// CanvasToSVG draws every occupied canvas sub-pixel as a dot.
func CanvasToSVG(canvas *surface.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Size()
	width := float64(w) * scale
	height := float64(h) * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	dotRadius := scale * 0.4

	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w); x++ {
			if canvas.Occupied(x, y) == 0 {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Band is a horizontal guide drawn behind a series, such as the fps band.
type Band struct {
	Min, Max float64
	Color    string
}

// SeriesToSVG draws values as a polyline over their index. The optional band
// is included in the vertical range.
func SeriesToSVG(values []float64, width, height int, strokeColor string, band *Band) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	if band != nil {
		minY = math.Min(minY, band.Min)
		maxY = math.Max(maxY, band.Max)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	toY := func(v float64) float64 {
		return float64(height) - (v-minY)/rangeY*float64(height)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if band != nil {
		top, bottom := toY(band.Max), toY(band.Min)
		sb.WriteString(fmt.Sprintf(`<rect x="0" y="%.1f" width="%d" height="%.1f" fill="%s" fill-opacity="0.25"/>
`, top, width, bottom-top, band.Color))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := toY(v)

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
