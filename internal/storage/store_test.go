package storage

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/recorder"
	"github.com/san-kum/blocksim/internal/signal"
)

type source struct {
	out *signal.Bus
}

func (s *source) Initialize(t dynamo.Time) { s.NextState(t) }
func (s *source) NextState(t dynamo.Time) {
	s.out.Import([]float64{t.Time(), 2 * t.Time()})
}
func (s *source) Finalize()                           {}
func (s *source) InterfaceIn() (*signal.RefBus, bool) { return nil, false }
func (s *source) InterfaceOut() (*signal.Bus, bool)   { return s.out, true }

func recorded(t *testing.T) *recorder.Recorder {
	t.Helper()
	defs := []signal.Def{signal.D("pos", "m"), signal.D("vel", "m/s")}
	out, _ := signal.NewBus(defs...)
	src := &source{out: out}

	rec, err := recorder.New(defs)
	if err != nil {
		t.Fatal(err)
	}
	if err := dynamo.Connect(src, []string{"pos", "vel"}, rec, []string{"pos", "vel"}); err != nil {
		t.Fatal(err)
	}

	clock, err := dynamo.NewClock(0, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	src.Initialize(clock)
	rec.Initialize(clock)
	for range clock.Ticks() {
		src.NextState(clock)
		rec.NextState(clock)
	}
	return rec
}

func newStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return st
}

func TestStoreSaveLoad(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(RunMetadata{
		Scenario: "test",
		Recorder: "main",
		End:      1,
		Dt:       0.5,
		Metrics:  map[string]map[string]float64{"vel": {"peak": 2}},
	}, recorded(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("expected uuid run id, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "test" {
		t.Errorf("expected scenario 'test', got '%s'", meta.Scenario)
	}
	if meta.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", meta.Samples)
	}
	if meta.Final["vel"] != 2.0 {
		t.Errorf("expected final vel 2.0, got %f", meta.Final["vel"])
	}
	if meta.Metrics["vel"]["peak"] != 2.0 {
		t.Errorf("expected stored peak 2.0, got %v", meta.Metrics)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if !slices.Equal(series.Defs, []signal.Def{signal.D("pos", "m"), signal.D("vel", "m/s")}) {
		t.Errorf("unexpected defs %v", series.Defs)
	}
	if !slices.Equal(series.Times, []float64{0, 0.5, 1}) {
		t.Errorf("unexpected times %v", series.Times)
	}
	vel, ok := series.Column("vel")
	if !ok || !slices.Equal(vel, []float64{0, 1, 2}) {
		t.Errorf("unexpected vel column %v", vel)
	}
	if _, ok := series.Column("acc"); ok {
		t.Error("expected acc to be missing")
	}
}

func TestStoreList(t *testing.T) {
	st := newStore(t)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, _ := st.Save(RunMetadata{Scenario: "a"}, recorded(t))
	second, _ := st.Save(RunMetadata{Scenario: "b"}, recorded(t))
	if first == second {
		t.Fatal("run ids must be unique")
	}

	if err := os.WriteFile(filepath.Join(st.Dir(), "stray.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scenario != "a" || runs[1].Scenario != "b" {
		t.Errorf("expected oldest first, got %s, %s", runs[0].Scenario, runs[1].Scenario)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(RunMetadata{Scenario: "test"}, recorded(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(st.Dir(), runID)
	for _, name := range []string{"metadata.json", "signals.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreUnknownRun(t *testing.T) {
	st := newStore(t)

	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSeries("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}
