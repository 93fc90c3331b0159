package effect

import (
	"context"
	"sync"
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/surface"
)

// BenchCase is one configuration to time.
type BenchCase struct {
	Effect string
	Count  int
	Mode   field.ConnectionMode
}

// BenchResult holds per-frame timings for one case.
type BenchResult struct {
	Case       BenchCase
	Frames     int
	PerFrame   time.Duration
	MeanLinks  float64
	FrameTimes []float64 // ms
}

// Bench runs every case concurrently for the given number of frames,
// drawing into a Recorder so only simulation and connection cost is
// measured. Results come back in case order.
func (r *Registry) Bench(ctx context.Context, cases []BenchCase, opts field.Options, frames int) ([]BenchResult, error) {
	results := make([]BenchResult, len(cases))
	errs := make([]error, len(cases))

	var wg sync.WaitGroup
	for i, c := range cases {
		wg.Add(1)
		go func(idx int, c BenchCase) {
			defer wg.Done()
			o := opts
			o.Count = c.Count
			o.Connections = c.Mode
			results[idx], errs[idx] = r.benchOne(ctx, c, o, frames)
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *Registry) benchOne(ctx context.Context, c BenchCase, opts field.Options, frames int) (BenchResult, error) {
	sim, err := r.Get(c.Effect, opts)
	if err != nil {
		return BenchResult{}, err
	}
	rec := surface.NewRecorder(int(opts.Width), int(opts.Height))

	res := BenchResult{Case: c, FrameTimes: make([]float64, 0, frames)}
	var total time.Duration
	links := 0
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		start := time.Now()
		sim.Step()
		sim.Draw(rec)
		d := time.Since(start)

		total += d
		links += sim.Stats().Links
		res.FrameTimes = append(res.FrameTimes, float64(d.Microseconds())/1000)
		res.Frames++
	}
	if res.Frames > 0 {
		res.PerFrame = total / time.Duration(res.Frames)
		res.MeanLinks = float64(links) / float64(res.Frames)
	}
	return res, nil
}
