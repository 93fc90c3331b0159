package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PeakFrequency returns the frequency of the strongest bin of a
// Hann-windowed FFT over samples, ignoring DC.
func PeakFrequency(samples []float64, rate int) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}
	spectrum := fft.FFTReal(window(samples))

	best, bestMag := 0, 0.0
	for i := 1; i < n/2; i++ {
		if m := cmplx.Abs(spectrum[i]); m > bestMag {
			best, bestMag = i, m
		}
	}
	return float64(best) * float64(rate) / float64(n)
}

// Peak returns the largest absolute sample.
func Peak(samples []float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = math.Max(p, math.Abs(s))
	}
	return p
}

func window(samples []float64) []float64 {
	n := len(samples)
	out := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		out[i] = v * w
	}
	return out
}
