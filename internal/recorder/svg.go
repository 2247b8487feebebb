package recorder

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/blocksim/internal/signal"
)

var svgPalette = []string{"#00ffff", "#00ff88", "#ffaa00", "#ff4444", "#aa88ff", "#ffffff"}

// WriteSVG draws the named signals against time as polylines on one canvas.
// No names means every recorded signal.
func (r *Recorder) WriteSVG(w io.Writer, names []string, width, height int) error {
	if len(names) == 0 {
		for _, d := range r.Defs() {
			names = append(names, d.Name)
		}
	}
	series := make([][]float64, len(names))
	for i, name := range names {
		data, ok := r.Series(name)
		if !ok {
			return fmt.Errorf("recorder: %w: %q", signal.ErrNotFound, name)
		}
		series[i] = data
	}
	return WriteSVG(w, r.Times(), series, width, height)
}

// WriteSVG draws each series against times, scaled to a shared bounding box
// padded by a tenth of its range.
func WriteSVG(w io.Writer, times []float64, series [][]float64, width, height int) error {
	if len(times) < 2 {
		return fmt.Errorf("recorder: need at least two samples to draw")
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 || math.IsInf(rangeY, 0) {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, s := range series {
		fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, svgPalette[i%len(svgPalette)])
		for j, v := range s {
			x := (times[j] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			}
		}
		bw.WriteString("\"/>\n")
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
