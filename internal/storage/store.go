package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	traceFile    = "trajectories.csv"
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

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Effect    string             `json:"effect"`
	Theme     string             `json:"theme"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Count     int                `json:"count"`
	Ticks     int                `json:"ticks"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata and the trace under a fresh run directory and
// returns the run ID.
func (s *Store) Save(meta RunMetadata, trace *Trace) (string, error) {
	runID, runDir, err := s.newRunDir(meta.Effect)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if trace != nil {
		meta.Ticks = trace.Ticks()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(traceHeader); err != nil {
		return "", err
	}
	if trace != nil {
		for _, smp := range trace.Samples {
			if err := w.Write(smp.record()); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunDir(effect string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", effect, time.Now().Unix())
	runID := base
	for i := 1; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		_, err := os.Stat(runDir)
		switch {
		case err == nil:
			runID = fmt.Sprintf("%s_%d", base, i)
		case os.IsNotExist(err):
			if err := os.MkdirAll(runDir, 0755); err != nil {
				return "", "", err
			}
			return runID, runDir, nil
		default:
			return "", "", fmt.Errorf("failed to create run directory: %w", err)
		}
	}
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
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
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads the samples of a run. Malformed rows are skipped.
func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := &Trace{Samples: make([]Sample, 0, len(records))}
	for i := 1; i < len(records); i++ {
		smp, err := parseSample(records[i])
		if err != nil {
			continue
		}
		trace.Samples = append(trace.Samples, smp)
	}
	return trace, nil
}

// Latest returns the ID of the newest run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[0].ID, nil
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

var traceHeader = []string{"tick", "index", "x", "y", "z", "vx", "vy", "vz"}

func (smp Sample) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		strconv.Itoa(smp.Tick), strconv.Itoa(smp.Index),
		f(smp.X), f(smp.Y), f(smp.Z),
		f(smp.VX), f(smp.VY), f(smp.VZ),
	}
}

func parseSample(rec []string) (Sample, error) {
	if len(rec) != len(traceHeader) {
		return Sample{}, fmt.Errorf("want %d fields, got %d", len(traceHeader), len(rec))
	}
	tick, err := strconv.Atoi(rec[0])
	if err != nil {
		return Sample{}, err
	}
	idx, err := strconv.Atoi(rec[1])
	if err != nil {
		return Sample{}, err
	}
	vals := make([]float64, 6)
	for i := range vals {
		v, err := strconv.ParseFloat(rec[i+2], 64)
		if err != nil {
			return Sample{}, err
		}
		vals[i] = v
	}
	return Sample{
		Tick: tick, Index: idx,
		X: vals[0], Y: vals[1], Z: vals[2],
		VX: vals[3], VY: vals[4], VZ: vals[5],
	}, nil
}
