package main

import (
	"context"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/blocksim/internal/metrics"
	"github.com/san-kum/blocksim/internal/recorder"
	"github.com/san-kum/blocksim/internal/scenario"
	"github.com/san-kum/blocksim/internal/sim"
	"github.com/san-kum/blocksim/internal/storage"
	"github.com/san-kum/blocksim/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	saveRun      bool
	plotSignals  []string
	liveView     bool
	csvPath      string
	jsonPath     string
	svgPath      string
	recorderName string
	strictWiring bool
	showMetrics  bool
	threshold    float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().BoolVar(&saveRun, "save", false, "save the recorded run to the data directory")
	cmd.Flags().StringSliceVar(&plotSignals, "plot", nil, "recorded signal to plot (repeatable)")
	cmd.Flags().BoolVar(&liveView, "live", false, "show live progress")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the recording as csv")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the recording as json")
	cmd.Flags().StringVar(&svgPath, "svg", "", "draw the --plot signals (default: all) into an svg file")
	cmd.Flags().StringVar(&recorderName, "recorder", "", "recorder to save, plot and export (default: first)")
	cmd.Flags().BoolVar(&strictWiring, "strict", false, "refuse to run when wiring validation reports problems")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print per-signal metrics")
	cmd.Flags().Float64Var(&threshold, "threshold", 100, "magnitude bound for the stability metric")
	return cmd
}

// writeSummary prints the block order, model and recorder counts and the step plan.
func writeSummary(w io.Writer, order []string, sys *sim.System) {
	fmt.Fprintf(w, "blocks: %s\n", strings.Join(order, ", "))
	fmt.Fprintf(w, "models: %d\n", sys.NumModels())
	if names := sys.RecorderNames(); len(names) > 0 {
		fmt.Fprintf(w, "recorders: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintln(w, "recorders: none")
	}
	fmt.Fprintf(w, "steps: %d (dt=%g)\n", sys.Clock().StepNum(), sys.Clock().DeltaT())
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario.yaml]",
		Short: "build a scenario and report its wiring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, d, err := load(args[0])
			if err != nil {
				return err
			}
			report := d.System.Validate()

			fmt.Println(titleStyle.Render(sc.Name))
			writeSummary(os.Stdout, d.Order, d.System)
			fmt.Println()
			switch {
			case !report.OK():
				fmt.Println(errStyle.Render("error"))
			case len(report.Cycles) > 0 || len(report.OrderViolations) > 0:
				fmt.Println(warnStyle.Render("warning"))
			default:
				fmt.Println(okStyle.Render("ok"))
			}
			fmt.Println(report.String())
			return report.Err()
		},
	}
}

func newBlocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "list block types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range scenario.NewRegistry().Types() {
				fmt.Println(t)
			}
		},
	}
}

// progressHook forwards scheduler progress to whichever sink is attached.
type progressHook struct {
	fn func(sim.Progress)
}

func (h *progressHook) report(p sim.Progress) {
	if h.fn != nil {
		h.fn(p)
	}
}

func load(path string, opts ...sim.Option) (*scenario.Scenario, *scenario.Diagram, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, nil, err
	}
	d, err := scenario.Build(sc, scenario.NewRegistry(), opts...)
	if err != nil {
		return nil, nil, err
	}
	return sc, d, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	hook := &progressHook{}
	every := cfg.ProgressEvery
	if liveView && every == 0 {
		every = 10
	}
	opts := []sim.Option{sim.WithLogger(logrus.WithField("scenario", args[0]))}
	if every > 0 {
		opts = append(opts, sim.WithProgress(every, hook.report))
	}

	sc, d, err := load(args[0], opts...)
	if err != nil {
		return err
	}

	report := d.System.Validate()
	if !report.OK() {
		return report.Err()
	}
	if len(report.Cycles) > 0 || len(report.OrderViolations) > 0 {
		if strictWiring {
			return fmt.Errorf("wiring: %s", report)
		}
		logrus.Warnf("wiring: %s", report)
	}

	name, rec, err := pickRecorder(sc, d)
	if err != nil {
		return err
	}

	ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if liveView {
		err = tui.Run(ctx, sc.Name, func(ctx context.Context, send func(tui.ProgressMsg)) error {
			hook.fn = func(p sim.Progress) {
				send(tui.ProgressMsg{Progress: p, Readings: readings(rec)})
			}
			return d.System.Run(ctx)
		})
	} else {
		hook.fn = func(p sim.Progress) {
			logrus.Debugf("step %d/%d (%.0f%%) t=%g", p.Step, p.Total, 100*p.Fraction(), p.Time)
		}
		err = d.System.Run(ctx)
	}
	if err != nil {
		return err
	}

	if rec == nil {
		fmt.Printf("%s: finished %d steps, nothing recorded\n", sc.Name, d.System.Clock().StepNum())
		return nil
	}
	return emit(sc, name, rec)
}

func pickRecorder(sc *scenario.Scenario, d *scenario.Diagram) (string, *recorder.Recorder, error) {
	if recorderName != "" {
		rec, ok := d.Recorders[recorderName]
		if !ok {
			return "", nil, fmt.Errorf("no recorder %q in %s", recorderName, sc.Name)
		}
		return recorderName, rec, nil
	}
	if len(sc.Recorders) == 0 {
		return "", nil, nil
	}
	name := sc.Recorders[0].Name
	return name, d.Recorders[name], nil
}

func readings(rec *recorder.Recorder) []tui.Reading {
	if rec == nil || rec.Len() == 0 {
		return nil
	}
	row := rec.Rows()[rec.Len()-1]
	out := make([]tui.Reading, len(row))
	for i, def := range rec.Defs() {
		out[i] = tui.Reading{Name: def.Name, Value: row[i]}
	}
	return out
}

func emit(sc *scenario.Scenario, name string, rec *recorder.Recorder) error {
	fmt.Println(titleStyle.Render(sc.Name))
	fmt.Printf("recorder: %s (%d samples)\n", name, rec.Len())
	last := rec.Rows()[rec.Len()-1]
	for i, def := range rec.Defs() {
		fmt.Printf("  %-24s %g\n", def.String(), last[i])
	}

	summary := metrics.Summarize(rec, threshold)
	if showMetrics {
		printMetrics(rec, summary)
	}

	for _, sig := range plotSignals {
		graph, err := rec.Plot(sig, cfg.PlotHeight, cfg.PlotWidth)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(graph)
	}

	if csvPath != "" {
		if err := writeTo(csvPath, rec.WriteCSV); err != nil {
			return err
		}
		logrus.Infof("wrote %s", csvPath)
	}
	if jsonPath != "" {
		if err := writeTo(jsonPath, rec.WriteJSON); err != nil {
			return err
		}
		logrus.Infof("wrote %s", jsonPath)
	}

	if svgPath != "" {
		err := writeTo(svgPath, func(w io.Writer) error {
			return rec.WriteSVG(w, plotSignals, svgWidth, svgHeight)
		})
		if err != nil {
			return err
		}
		logrus.Infof("wrote %s", svgPath)
	}

	if saveRun {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Scenario: sc.Name,
			Recorder: name,
			Start:    sc.Start,
			End:      sc.End,
			Dt:       sc.Dt,
			Metrics:  summary,
		}, rec)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved: %s\n", runID)
	}
	return nil
}

func printMetrics(rec *recorder.Recorder, summary map[string]map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nSIGNAL\tPEAK\tEFFORT\tENERGY\tDRIFT\tSTABILITY\tFREQ")
	for _, def := range rec.Defs() {
		m := summary[def.Name]
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.2f\t%.4g\n",
			def.Name, m["peak"], m["effort"], m["energy"], m["drift"], m["stability"], m["frequency"])
	}
	w.Flush()
}
