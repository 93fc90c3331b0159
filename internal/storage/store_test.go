package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/driftfield/internal/field"
)

func recordDrift(t *testing.T, ticks int) (*Trace, RunMetadata) {
	t.Helper()
	opts := field.Options{Width: 200, Height: 100, Count: 4, Seed: 42}
	f := field.NewField(opts)
	trace := &Trace{}
	for i := 0; i < ticks; i++ {
		f.Step()
		trace.Capture(f, i)
	}
	return trace, RunMetadata{
		Effect: "drift", Theme: "dark", Seed: 42,
		Width: 200, Height: 100, Count: 4,
		Metrics: map[string]float64{"connections": 1.5},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	trace, meta := recordDrift(t, 3)
	runID, err := st.Save(meta, trace)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Effect != "drift" || got.Seed != 42 || got.Ticks != 3 {
		t.Errorf("unexpected metadata %+v", got)
	}
	if got.Metrics["connections"] != 1.5 {
		t.Errorf("expected connections 1.5, got %f", got.Metrics["connections"])
	}

	loaded, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(loaded.Samples) != 12 {
		t.Fatalf("expected 12 samples, got %d", len(loaded.Samples))
	}
	for i, s := range loaded.Samples {
		want := trace.Samples[i]
		if s.Tick != want.Tick || s.Index != want.Index {
			t.Fatalf("sample %d identity mismatch", i)
		}
		if math.Abs(s.X-want.X) > 1e-6 || math.Abs(s.VY-want.VY) > 1e-6 {
			t.Errorf("sample %d values drifted: %+v vs %+v", i, s, want)
		}
	}
}

func TestStoreListAndLatest(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Latest(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound on empty store, got %v", err)
	}

	trace, meta := recordDrift(t, 1)
	first, err := st.Save(meta, trace)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(meta, trace)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("run ids must be unique")
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestSaveBaseDirIsFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "runs")
	if err := os.WriteFile(base, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := New(base).Save(RunMetadata{Effect: "drift"}, &Trace{})
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected an error when the base dir is a file")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("save did not return")
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadTrace("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestLoadTraceSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	run := filepath.Join(dir, "manual")
	if err := os.MkdirAll(run, 0755); err != nil {
		t.Fatal(err)
	}
	csv := "tick,index,x,y,z,vx,vy,vz\n0,0,1,2,0,0.1,0.1,0\nbad,row\n1,0,1.1,2.1,0,0.1,0.1,0\n"
	if err := os.WriteFile(filepath.Join(run, traceFile), []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	trace, err := st.LoadTrace("manual")
	if err != nil {
		t.Fatal(err)
	}
	if len(trace.Samples) != 2 || trace.Ticks() != 2 {
		t.Errorf("expected 2 good samples over 2 ticks, got %d / %d", len(trace.Samples), trace.Ticks())
	}
}

func TestCaptureStarfield(t *testing.T) {
	sf := field.NewStarfield(field.Options{Width: 50, Height: 50, Count: 3, Seed: 1})
	trace := &Trace{}
	trace.Capture(sf, 0)
	if len(trace.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(trace.Samples))
	}
	for _, s := range trace.Samples {
		if s.Z <= 0 || s.VZ < 1 {
			t.Errorf("starfield sample lost depth: %+v", s)
		}
	}
	depth := trace.Series(MeanDepth)
	if len(depth) != 1 || depth[0] <= 0 {
		t.Errorf("unexpected depth series %v", depth)
	}
}

func TestSeries(t *testing.T) {
	trace := &Trace{Samples: []Sample{
		{Tick: 0, Index: 0, X: 0, Y: 0},
		{Tick: 0, Index: 1, X: 2, Y: 0},
		{Tick: 1, Index: 0, X: 4, Y: 0},
		{Tick: 1, Index: 1, X: 4, Y: 0},
	}}
	mean := trace.Series(MeanX)
	if len(mean) != 2 || mean[0] != 1 || mean[1] != 4 {
		t.Errorf("unexpected mean series %v", mean)
	}
	spread := trace.Series(Spread)
	if spread[0] != 1 || spread[1] != 0 {
		t.Errorf("unexpected spread series %v", spread)
	}
	if (&Trace{}).Series(MeanX) == nil {
		t.Error("empty trace should give an empty, non-nil series")
	}
}

func TestExportJSON(t *testing.T) {
	trace, meta := recordDrift(t, 2)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, meta, trace); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Ticks != 2 || len(data.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(data.Frames))
	}
	if len(data.Frames[1].Particles) != 4 {
		t.Errorf("expected 4 particles per frame, got %d", len(data.Frames[1].Particles))
	}
	if data.Run.Effect != "drift" {
		t.Errorf("metadata lost: %+v", data.Run)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, meta, trace); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("export file missing or empty: %v", err)
	}
}
