package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/blocksim/internal/recorder"
	"github.com/san-kum/blocksim/internal/signal"
)

const (
	metadataFile = "metadata.json"
	signalsFile  = "signals.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Recorder  string             `json:"recorder"`
	Timestamp time.Time          `json:"timestamp"`
	Start     float64            `json:"start"`
	End       float64            `json:"end"`
	Dt        float64            `json:"dt"`
	Samples   int                `json:"samples"`
	Signals   []signal.Def       `json:"signals"`
	Final     map[string]float64 `json:"final"`

	Metrics map[string]map[string]float64 `json:"metrics,omitempty"`
}

// Save writes meta and the samples of rec into a new run directory. ID,
// Timestamp, Samples, Signals and Final are filled in from rec.
func (s *Store) Save(meta RunMetadata, rec *recorder.Recorder) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now()
	meta.Samples = rec.Len()
	meta.Signals = rec.Defs()
	meta.Final = make(map[string]float64, len(meta.Signals))
	if rows := rec.Rows(); len(rows) > 0 {
		last := rows[len(rows)-1]
		for i, d := range meta.Signals {
			meta.Final[d.Name] = last[i]
		}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", fmt.Errorf("storage: metadata: %w", err)
	}

	if err := writeFile(filepath.Join(runDir, signalsFile), func(f *os.File) error {
		return rec.WriteCSV(f)
	}); err != nil {
		return "", fmt.Errorf("storage: signals: %w", err)
	}

	return meta.ID, nil
}

func writeFile(path string, write func(*os.File) error) error {
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

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

// Series is a run's recorded samples read back from disk.
type Series struct {
	Defs  []signal.Def
	Times []float64
	Rows  [][]float64
}

// Column returns the samples of the named signal.
func (s *Series) Column(name string) ([]float64, bool) {
	col := slices.IndexFunc(s.Defs, func(d signal.Def) bool { return d.Name == name })
	if col < 0 {
		return nil, false
	}
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[col]
	}
	return out, true
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, signalsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: signals of %s: %w", runID, err)
	}
	if len(records) == 0 {
		return &Series{}, nil
	}

	header := records[0]
	series := &Series{
		Defs:  make([]signal.Def, 0, len(header)-1),
		Times: make([]float64, 0, len(records)-1),
		Rows:  make([][]float64, 0, len(records)-1),
	}
	for _, h := range header[1:] {
		series.Defs = append(series.Defs, signal.ParseDef(h))
	}

	for line, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: signals of %s line %d: %w", runID, line+2, err)
			}
			values[j] = v
		}
		series.Times = append(series.Times, values[0])
		series.Rows = append(series.Rows, values[1:])
	}
	return series, nil
}
