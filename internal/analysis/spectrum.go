package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/san-kum/tearsim/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

const minSamples = 4

// PowerSpectrum returns the magnitude of the first n/2 bins of the mean
// removed, Hann windowed series.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	mean := stat.Mean(data, nil)
	hann := window.Hann(n)
	x := make([]float64, n)
	for i, v := range data {
		x[i] = (v - mean) * hann[i]
	}

	coeffs := fft.FFTReal(x)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency finds the strongest non-DC bin of data sampled at
// sampleRate Hz and returns its frequency and magnitude.
func DominantFrequency(data []float64, sampleRate float64) (float64, float64, error) {
	if len(data) < minSamples {
		return 0, 0, fmt.Errorf("%w: need at least %d samples, got %d", dynamo.ErrNoData, minSamples, len(data))
	}
	ps := PowerSpectrum(data)
	best, power := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > power {
			best, power = i, ps[i]
		}
	}
	if best == 0 {
		return 0, 0, nil
	}
	return float64(best) * sampleRate / float64(len(data)), power, nil
}

// Summary describes one stats column.
type Summary struct {
	Mean, StdDev float64
	Min, Max     float64
	Samples      int
}

func Describe(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(data, nil)
	s := Summary{Mean: mean, StdDev: std, Min: data[0], Max: data[0], Samples: len(data)}
	for _, v := range data[1:] {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	return s
}

// TearOnset returns the time of the first frame with a broken constraint.
func TearOnset(frames []dynamo.Stats) (float64, bool) {
	for _, f := range frames {
		if f.Broken > 0 {
			return f.Time, true
		}
	}
	return 0, false
}
