package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
)

const (
	metadataFile    = "metadata.json"
	moistureFile    = "moisture.csv"
	diagnosticsFile = "diagnostics.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was configured. Fields the result already carries
// (scheme, kernel, layout, shape) are taken from the result.
type RunInfo struct {
	Name      string
	Precision string
	Backend   string
	Seed      uint64
	Params    soil.Parameters
	Initial   []float64
}

type Totals struct {
	NewtonIterations    int `json:"newton_iterations"`
	BisectionIterations int `json:"bisection_iterations"`
	Fallbacks           int `json:"fallbacks"`
	Unconverged         int `json:"unconverged"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Scheme    string             `json:"scheme"`
	Precision string             `json:"precision"`
	Kernel    string             `json:"kernel"`
	Layout    string             `json:"layout"`
	Backend   string             `json:"backend"`
	Members   int                `json:"members"`
	Days      int                `json:"days"`
	Seed      uint64             `json:"seed"`
	Params    soil.Parameters    `json:"params"`
	Initial   []float64          `json:"initial"`
	Totals    Totals             `json:"totals"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newMetadata(id string, now time.Time, info RunInfo, result *sim.Result) RunMetadata {
	return RunMetadata{
		ID:        id,
		Name:      info.Name,
		Timestamp: now,
		Scheme:    string(result.Scheme),
		Precision: info.Precision,
		Kernel:    result.Kernel,
		Layout:    result.Layout.String(),
		Backend:   info.Backend,
		Members:   result.Members(),
		Days:      result.Days(),
		Seed:      info.Seed,
		Params:    info.Params,
		Initial:   info.Initial,
		Totals: Totals{
			NewtonIterations:    result.Diagnostics.NewtonIterations,
			BisectionIterations: result.Diagnostics.BisectionIterations,
			Fallbacks:           result.Diagnostics.Fallbacks(),
			Unconverged:         result.Diagnostics.Unconverged(),
		},
		Metrics: result.Metrics,
	}
}

// Save writes the run into a new directory and returns its ID.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	name := info.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := newMetadata(runID, now, info, result)
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, moistureFile), func(f *os.File) error {
		return WriteMoistureCSV(f, result)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, diagnosticsFile), func(f *os.File) error {
		return WriteDiagnosticsCSV(f, result.Diagnostics.Days)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns the metadata of every stored run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadPath reads the moisture path of a run, member-major.
func (s *Store) LoadPath(runID string) ([][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, moistureFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	members := len(records[0]) - 1
	days := len(records) - 1
	path := make([][]float64, members)
	for i := range path {
		path[i] = make([]float64, days)
	}

	for d, record := range records[1:] {
		if len(record) != members+1 {
			return nil, fmt.Errorf("storage: %s row %d has %d fields, want %d", moistureFile, d+2, len(record), members+1)
		}
		for i := 0; i < members; i++ {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", moistureFile, d+2, err)
			}
			path[i][d] = v
		}
	}

	return path, nil
}

// LoadDiagnostics reads the per-day solver report of a run.
func (s *Store) LoadDiagnostics(runID string) ([]sim.DayReport, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, diagnosticsFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.DayReport{}, nil
	}

	reports := make([]sim.DayReport, 0, len(records)-1)
	for n, record := range records[1:] {
		if len(record) != len(diagnosticsHeader) {
			return nil, fmt.Errorf("storage: %s row %d has %d fields", diagnosticsFile, n+2, len(record))
		}
		v := make([]int, len(record))
		for j, field := range record {
			x, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", diagnosticsFile, n+2, err)
			}
			v[j] = x
		}
		reports = append(reports, sim.DayReport{
			Day: v[0], Newton: v[1], Bisection: v[2], Fallbacks: v[3],
			Saturated: v[4], Dry: v[5], Unconverged: v[6],
		})
	}
	return reports, nil
}

// LoadResult rebuilds the result of a stored run from its metadata, path and
// diagnostics.
func (s *Store) LoadResult(runID string) (*sim.Result, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	path, err := s.LoadPath(runID)
	if err != nil {
		return nil, nil, err
	}
	days, err := s.LoadDiagnostics(runID)
	if err != nil {
		return nil, nil, err
	}

	layout, _, err := meta.Params.Resolve()
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	result := &sim.Result{
		Path: path,
		Diagnostics: sim.Diagnostics{
			NewtonIterations:    meta.Totals.NewtonIterations,
			BisectionIterations: meta.Totals.BisectionIterations,
			Days:                days,
		},
		Metrics: meta.Metrics,
		Layout:  layout,
		Kernel:  meta.Kernel,
		Scheme:  sim.Scheme(meta.Scheme),
	}
	return result, meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func writeJSON(path string, v interface{}) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
