package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first len(data)/2 bins of the
// Hann-windowed, mean-removed series. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency is the frequency in Hz of the strongest bin above DC,
// for a series sampled sampleRate times per second. Zero when the series is
// too short or flat.
func DominantFrequency(data []float64, sampleRate float64) float64 {
	ps := PowerSpectrum(data)
	best, bestMag := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > bestMag {
			best, bestMag = i, ps[i]
		}
	}
	if best == 0 {
		return 0
	}
	return float64(best) * sampleRate / float64(len(data))
}
