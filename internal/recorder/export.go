package recorder

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blocksim/internal/signal"
)

type ExportData struct {
	Signals []signal.Def `json:"signals"`
	Steps   int          `json:"steps"`
	Times   []float64    `json:"times"`
	Values  [][]float64  `json:"values"`
}

func (r *Recorder) Export() ExportData {
	return ExportData{
		Signals: r.Defs(),
		Steps:   r.Len(),
		Times:   r.times,
		Values:  r.rows,
	}
}

func (r *Recorder) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r.Export())
}

// WriteCSV writes a header of time and name[unit] columns, then one row per sample.
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	for _, d := range r.Defs() {
		header = append(header, d.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, row := range r.rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, formatFloat(r.times[i]))
		for _, v := range row {
			record = append(record, formatFloat(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Plot renders one recorded signal as an ASCII chart.
func (r *Recorder) Plot(name string, height, width int) (string, error) {
	data, ok := r.Series(name)
	if !ok {
		return "", fmt.Errorf("recorder: %w: %q", signal.ErrNotFound, name)
	}
	return PlotSeries(data, name, height, width)
}

// PlotSeries renders data with asciigraph.
func PlotSeries(data []float64, caption string, height, width int) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("recorder: no data to plot")
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}
