package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/san-kum/blocksim/internal/recorder"
	"github.com/san-kum/blocksim/internal/storage"
	"github.com/spf13/cobra"
)

const (
	maxPlots  = 6
	svgWidth  = 800
	svgHeight = 400
)

var plotSVG string

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id] [signal...]",
		Short: "plot signals of a saved run",
		Args:  cobra.MinimumNArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().StringVar(&plotSVG, "svg", "", "also draw the plotted signals into an svg file")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSPAN\tDT\tSAMPLES\tSIGNALS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g..%gs\t%g\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Start,
			run.End,
			run.Dt,
			run.Samples,
			len(run.Signals),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Rows) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	names := args[1:]
	if len(names) == 0 {
		for i, d := range series.Defs {
			if i == maxPlots {
				break
			}
			names = append(names, d.Name)
		}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(series.Rows))

	columns := make([][]float64, 0, len(names))
	for _, name := range names {
		data, ok := series.Column(name)
		if !ok {
			return fmt.Errorf("run %s has no signal %q", runID, name)
		}
		columns = append(columns, data)
		graph, err := recorder.PlotSeries(data, name, cfg.PlotHeight, cfg.PlotWidth)
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}

	if plotSVG != "" {
		err := writeTo(plotSVG, func(w io.Writer) error {
			return recorder.WriteSVG(w, series.Times, columns, svgWidth, svgHeight)
		})
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotSVG)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
