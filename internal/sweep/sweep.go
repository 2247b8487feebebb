// Package sweep runs a scenario over a grid of block parameters and keeps the
// point that minimises a metric of one recorded signal.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/blocksim/internal/metrics"
	"github.com/san-kum/blocksim/internal/scenario"
	"github.com/sirupsen/logrus"
)

var ErrNoResult = errors.New("sweep: no grid point ran successfully")

// Axis is one swept parameter, addressed as "block.param".
type Axis struct {
	Param  string
	Values []float64
}

// ParseAxis reads "block.param=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	param, list, ok := strings.Cut(s, "=")
	if !ok || param == "" || list == "" {
		return Axis{}, fmt.Errorf("sweep: axis %q is not block.param=v1,v2", s)
	}
	var axis Axis
	axis.Param = strings.TrimSpace(param)
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("sweep: axis %q: %w", s, err)
		}
		axis.Values = append(axis.Values, v)
	}
	return axis, nil
}

// Objective selects the value to minimise: Metric evaluated on column Signal
// of recorder Recorder.
type Objective struct {
	Recorder  string
	Signal    string
	Metric    string
	Threshold float64
}

// Point is one evaluated grid point. Err is set when the point failed to
// build or run.
type Point struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type Result struct {
	Best   Point
	Points []Point
}

type GridSearch struct {
	axes []Axis
	reg  *scenario.Registry
	log  *logrus.Entry
}

func NewGridSearch(reg *scenario.Registry, axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes, reg: reg, log: logrus.WithField("component", "sweep")}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search evaluates every grid point in axis order, the last axis varying
// fastest. Failed points are kept in the result but never chosen as best.
func (g *GridSearch) Search(ctx context.Context, sc *scenario.Scenario, obj Objective) (*Result, error) {
	if _, err := metrics.ByName(obj.Metric, obj.Threshold); err != nil {
		return nil, err
	}

	res := &Result{Best: Point{Score: math.Inf(1)}}
	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) {
		p := Point{Params: params}
		p.Score, p.Err = g.evaluate(ctx, sc, params, obj)
		if p.Err != nil {
			g.log.WithError(p.Err).WithField("params", params).Warn("grid point failed")
		} else {
			g.log.WithField("params", params).Debugf("%s = %g", obj.Metric, p.Score)
		}
		res.Points = append(res.Points, p)
		if p.Err == nil && p.Score < res.Best.Score {
			res.Best = p
		}
	})
	if err != nil {
		return res, err
	}
	if res.Best.Params == nil {
		return res, ErrNoResult
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.axes) {
		visit(maps.Clone(current))
		return nil
	}

	axis := g.axes[depth]
	for _, v := range axis.Values {
		current[axis.Param] = v
		if err := g.searchRecursive(ctx, depth+1, current, visit); err != nil {
			return err
		}
	}
	delete(current, axis.Param)
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, sc *scenario.Scenario, params map[string]float64, obj Objective) (float64, error) {
	tuned, err := sc.WithParams(params)
	if err != nil {
		return 0, err
	}
	d, err := scenario.Build(tuned, g.reg)
	if err != nil {
		return 0, err
	}
	rec, ok := d.Recorders[obj.Recorder]
	if !ok {
		return 0, fmt.Errorf("sweep: no recorder %q", obj.Recorder)
	}
	if err := d.System.Run(ctx); err != nil {
		return 0, err
	}

	values, ok := rec.Series(obj.Signal)
	if !ok {
		return 0, fmt.Errorf("sweep: recorder %q has no signal %q", obj.Recorder, obj.Signal)
	}
	m, _ := metrics.ByName(obj.Metric, obj.Threshold)
	score := metrics.Evaluate(rec.Times(), values, m)[obj.Metric]
	if math.IsNaN(score) {
		return 0, fmt.Errorf("sweep: %s is NaN", obj.Metric)
	}
	return score, nil
}
