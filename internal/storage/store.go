package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/sampler"
)

type Store struct {
	baseDir string
	logger  *slog.Logger
	newID   func() string
	now     func() time.Time
}

func New(baseDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		baseDir: baseDir,
		logger:  logger,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Problem   string             `json:"problem"`
	Method    string             `json:"method"`
	Timestamp time.Time          `json:"timestamp"`
	T0        float64            `json:"t0"`
	X0        []float64          `json:"x0"`
	From      float64            `json:"from"`
	To        float64            `json:"to"`
	Samples   int                `json:"samples"`
	Fixed     *config.Fixed      `json:"fixed,omitempty"`
	Adaptive  *config.Adaptive   `json:"adaptive,omitempty"`
	Params    map[string]float64 `json:"params,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a sampled trajectory and returns its run id.
func (s *Store) Save(cfg *config.File, params map[string]float64, tr *sampler.Trajectory) (string, error) {
	runID := s.newID()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Problem:   tr.Problem,
		Method:    tr.Method,
		Timestamp: s.now(),
		T0:        tr.T0,
		X0:        tr.X0,
		From:      cfg.From,
		To:        cfg.To,
		Samples:   len(tr.Samples),
		Params:    params,
		Metrics: map[string]float64{
			"steps":       float64(tr.Totals.Steps),
			"rejected":    float64(tr.Totals.Rejected),
			"evaluations": float64(tr.Totals.Evaluations),
		},
	}
	if tr.HasExact {
		meta.Metrics["max_error"] = tr.MaxError
	}
	if tr.Method == config.MethodFixed {
		fixed := cfg.Fixed
		meta.Fixed = &fixed
	} else {
		adaptive := cfg.Adaptive
		meta.Adaptive = &adaptive
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), tr); err != nil {
		return "", err
	}

	s.logger.Info("saved run", "id", runID, "problem", meta.Problem, "samples", meta.Samples)
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, tr *sampler.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(tr.Samples) == 0 {
		w.Flush()
		return w.Error()
	}

	dim := len(tr.Samples[0].X)
	header := []string{"time"}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if tr.HasExact {
		for i := 0; i < dim; i++ {
			header = append(header, fmt.Sprintf("exact%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, sample := range tr.Samples {
		row := []string{formatFloat(sample.T)}
		for _, v := range sample.X {
			row = append(row, formatFloat(v))
		}
		for _, v := range sample.Exact {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns stored runs, newest first.
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
			s.logger.Debug("skipping run directory", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates returns the solver states and sample times of a run. Exact
// columns are not part of the returned states.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	dim := 0
	for _, col := range records[0][1:] {
		if strings.HasPrefix(col, "x") {
			dim++
		}
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < dim+1 {
			return nil, nil, fmt.Errorf("run %s: row %d has %d columns, want at least %d", runID, i, len(record), dim+1)
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("run %s: row %d: %w", runID, i, err)
		}
		times = append(times, t)

		state := make([]float64, dim)
		for j := range state {
			if state[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, nil, fmt.Errorf("run %s: row %d: %w", runID, i, err)
			}
		}
		states = append(states, state)
	}

	return states, times, nil
}

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a run's metadata and states to w as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Times: times, States: states})
}
