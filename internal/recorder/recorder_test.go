package recorder

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ramp writes t and 2t.
type ramp struct {
	out *signal.Bus
}

func newRamp(t *testing.T) *ramp {
	out, err := signal.NewBus(signal.D("t", "s"), signal.D("twice", "s"))
	require.NoError(t, err)
	return &ramp{out: out}
}

func (r *ramp) Initialize(tm dynamo.Time) { r.NextState(tm) }
func (r *ramp) NextState(tm dynamo.Time) {
	r.out.Import([]float64{tm.Time(), 2 * tm.Time()})
}
func (r *ramp) Finalize()                           {}
func (r *ramp) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (r *ramp) InterfaceOut() (*signal.Bus, bool)   { return r.out, true }

func record(t *testing.T, start, end, dt float64) *Recorder {
	t.Helper()
	src := newRamp(t)
	rec, err := New([]signal.Def{signal.D("t", "s"), signal.D("twice", "s")})
	require.NoError(t, err)
	require.NoError(t, dynamo.Connect(src, []string{"t", "twice"}, rec, []string{"t", "twice"}))

	clock, err := dynamo.NewClock(start, end, dt)
	require.NoError(t, err)

	src.Initialize(clock)
	rec.Initialize(clock)
	for range clock.Ticks() {
		src.NextState(clock)
		rec.NextState(clock)
	}
	rec.Finalize()
	return rec
}

func TestRecorderLength(t *testing.T) {
	rec := record(t, 0, 1, 0.25)

	assert.Equal(t, 5, rec.Len())
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, rec.Times())

	twice, ok := rec.Series("twice")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, twice)

	_, ok = rec.Series("missing")
	assert.False(t, ok)
}

func TestRecorderReinitialize(t *testing.T) {
	rec := record(t, 0, 1, 0.5)
	clock, _ := dynamo.NewClock(0, 1, 0.5)

	rec.Initialize(clock)
	assert.Equal(t, 1, rec.Len(), "initialize must discard the previous run")
}

func TestRecorderInterfaces(t *testing.T) {
	rec, err := New([]signal.Def{signal.D("a", "-")})
	require.NoError(t, err)

	_, ok := rec.InterfaceOut()
	assert.False(t, ok)
	in, ok := rec.InterfaceIn()
	assert.True(t, ok)
	assert.Equal(t, 1, in.Len())

	_, err = New(nil)
	assert.Error(t, err)

	_, err = New([]signal.Def{signal.D("a", "-"), signal.D("a", "-")})
	var dup *signal.DuplicateNameError
	assert.ErrorAs(t, err, &dup)
}

func TestWriteCSV(t *testing.T) {
	rec := record(t, 0, 1, 0.5)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteCSV(&buf))

	want := "time,t[s],twice[s]\n0,0,0\n0.5,0.5,1\n1,1,2\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	rec := record(t, 0, 1, 0.5)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteJSON(&buf))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, 3, data.Steps)
	assert.Equal(t, []signal.Def{signal.D("t", "s"), signal.D("twice", "s")}, data.Signals)
	assert.Equal(t, []float64{1, 2}, data.Values[2])
}

func TestPlot(t *testing.T) {
	rec := record(t, 0, 1, 0.1)

	graph, err := rec.Plot("twice", 5, 40)
	require.NoError(t, err)
	assert.True(t, strings.Contains(graph, "twice"))

	_, err = rec.Plot("nope", 5, 40)
	assert.ErrorIs(t, err, signal.ErrNotFound)

	_, err = PlotSeries(nil, "empty", 5, 40)
	assert.Error(t, err)
}

func TestWriteSVG(t *testing.T) {
	rec := record(t, 0, 1, 0.5)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteSVG(&buf, nil, 100, 120))

	svg := buf.String()
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Contains(t, svg, `d="M0.0,110.0`)
	assert.Contains(t, svg, "L100.0,10.0")

	err := rec.WriteSVG(&buf, []string{"nope"}, 100, 120)
	assert.ErrorIs(t, err, signal.ErrNotFound)

	assert.Error(t, WriteSVG(&buf, []float64{0}, nil, 10, 10))
}
