package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/blocksim/internal/scenario"
	"github.com/san-kum/blocksim/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	sweepAxes     []string
	sweepRecorder string
	sweepSignal   string
	sweepMetric   string
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [scenario.yaml]",
		Short: "grid-search block parameters against a signal metric",
		Example: "  blocksim sweep pid.yaml --param controller.kp=1,2,4 --param controller.ki=0,0.5 \\\n" +
			"    --recorder loop --signal controller.u --metric energy",
		Args: cobra.ExactArgs(1),
		RunE: runSweep,
	}
	cmd.Flags().StringArrayVar(&sweepAxes, "param", nil, "swept parameter as block.param=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&sweepRecorder, "recorder", "", "recorder holding the objective signal (default: first)")
	cmd.Flags().StringVar(&sweepSignal, "signal", "", "recorded signal to score")
	cmd.Flags().StringVar(&sweepMetric, "metric", "energy", "metric to minimise")
	cmd.Flags().Float64Var(&threshold, "threshold", 100, "magnitude bound for the stability metric")
	_ = cmd.MarkFlagRequired("param")
	_ = cmd.MarkFlagRequired("signal")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	axes := make([]sweep.Axis, 0, len(sweepAxes))
	for _, s := range sweepAxes {
		axis, err := sweep.ParseAxis(s)
		if err != nil {
			return err
		}
		axes = append(axes, axis)
	}

	rec := sweepRecorder
	if rec == "" {
		if len(sc.Recorders) == 0 {
			return fmt.Errorf("%s has no recorders", sc.Name)
		}
		rec = sc.Recorders[0].Name
	}

	g := sweep.NewGridSearch(scenario.NewRegistry(), axes...)
	fmt.Println(titleStyle.Render(sc.Name))
	fmt.Printf("grid: %d points, minimising %s of %s\n\n", g.Size(), sweepMetric, sweepSignal)

	res, err := g.Search(cmd.Context(), sc, sweep.Objective{
		Recorder:  rec,
		Signal:    sweepSignal,
		Metric:    sweepMetric,
		Threshold: threshold,
	})
	if res != nil {
		printPoints(axes, res)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n%s %s = %g at %s\n", okStyle.Render("best"), sweepMetric, res.Best.Score, formatParams(axes, res.Best.Params))
	return nil
}

func printPoints(axes []sweep.Axis, res *sweep.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(axes)+1)
	for _, a := range axes {
		header = append(header, strings.ToUpper(a.Param))
	}
	fmt.Fprintln(w, strings.Join(append(header, "SCORE"), "\t"))

	for _, p := range res.Points {
		row := make([]string, 0, len(axes)+1)
		for _, a := range axes {
			row = append(row, fmt.Sprintf("%g", p.Params[a.Param]))
		}
		score := fmt.Sprintf("%.6g", p.Score)
		if p.Err != nil {
			score = errStyle.Render("failed")
		}
		fmt.Fprintln(w, strings.Join(append(row, score), "\t"))
	}
	w.Flush()
}

func formatParams(axes []sweep.Axis, params map[string]float64) string {
	parts := make([]string, 0, len(params))
	for _, a := range axes {
		parts = append(parts, fmt.Sprintf("%s=%g", a.Param, params[a.Param]))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
