package bandenergy

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/spectag/internal/stage/shared"
)

// Estimator sums correlation magnitudes over a swept set of frequencies for windows of a
// fixed strided length. Tables are computed once and reused for every window.
type Estimator struct {
	cos  [][]float64
	sin  [][]float64
	norm float64
}

// Frequencies returns the swept frequencies of a band: start + k*step up to end inclusive.
func Frequencies(center, bandwidth, step float64) []float64 {
	if step <= 0 {
		return nil
	}

	start := center - bandwidth
	end := center + bandwidth

	var out []float64

	for k := 0; ; k++ {
		freq := start + float64(k)*step
		if freq > end+shared.Tolerance {
			break
		}

		out = append(out, freq)
	}

	return out
}

// StridedLength is the number of samples kept when a window of length samples is read at stride.
func StridedLength(length, stride int) int {
	if length <= 0 || stride <= 0 {
		return 0
	}

	return (length + stride - 1) / stride
}

// NewEstimator prepares tables for windows of n strided samples taken every stride samples
// of a signal at sampleRate.
func NewEstimator(sampleRate int, freqs []float64, n, stride int) *Estimator {
	est := &Estimator{
		cos:  make([][]float64, len(freqs)),
		sin:  make([][]float64, len(freqs)),
		norm: float64(n) / 2,
	}

	for f, freq := range freqs {
		omega := 2 * math.Pi * freq / float64(sampleRate)
		cosRow := make([]float64, n)
		sinRow := make([]float64, n)

		for k := range n {
			sinRow[k], cosRow[k] = math.Sincos(omega * float64(k*stride))
		}

		est.cos[f] = cosRow
		est.sin[f] = sinRow
	}

	return est
}

// Energy returns the band energy of a strided window. The window must hold exactly the
// number of samples the estimator was built for.
func (e *Estimator) Energy(window []float64) float64 {
	if e.norm == 0 {
		return 0
	}

	var total float64

	for f := range e.cos {
		re := floats.Dot(window, e.cos[f])
		im := floats.Dot(window, e.sin[f])
		total += math.Hypot(re, im) / e.norm
	}

	return total
}

// Energy computes the band energy of samples directly, without reusing tables.
func Energy(samples []float32, sampleRate int, center, bandwidth, step float64, stride int) float64 {
	n := StridedLength(len(samples), stride)
	if n == 0 || sampleRate <= 0 {
		return 0
	}

	window := make([]float64, n)
	Strided(window, samples, stride)

	return NewEstimator(sampleRate, Frequencies(center, bandwidth, step), n, stride).Energy(window)
}

// Strided fills dst with every stride-th sample of src.
func Strided(dst []float64, src []float32, stride int) {
	for k := range dst {
		dst[k] = float64(src[k*stride])
	}
}
