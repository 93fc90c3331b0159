package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Ticks  int           `json:"ticks"`
	Frames []ExportFrame `json:"frames"`
}

// ExportFrame is every particle of one tick as [x, y, z, vx, vy, vz] rows.
type ExportFrame struct {
	Tick      int          `json:"tick"`
	Particles [][6]float64 `json:"particles"`
}

func newExportData(meta RunMetadata, trace *Trace) ExportData {
	data := ExportData{Run: meta, Ticks: trace.Ticks(), Frames: make([]ExportFrame, 0, trace.Ticks())}
	for _, s := range trace.Samples {
		n := len(data.Frames)
		if n == 0 || data.Frames[n-1].Tick != s.Tick {
			data.Frames = append(data.Frames, ExportFrame{Tick: s.Tick})
			n++
		}
		data.Frames[n-1].Particles = append(data.Frames[n-1].Particles,
			[6]float64{s.X, s.Y, s.Z, s.VX, s.VY, s.VZ})
	}
	return data
}

func WriteJSON(w io.Writer, meta RunMetadata, trace *Trace) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, trace))
}

func ExportJSON(path string, meta RunMetadata, trace *Trace) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, trace)
}

func ExportJSONStdout(meta RunMetadata, trace *Trace) error {
	return WriteJSON(os.Stdout, meta, trace)
}
