package threshold

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const histogramBins = 256

// Otsu returns the bin center that maximizes the between-class variance of a 256-bin
// histogram spanning [min, max] of values. Ties resolve to the lowest bin. A constant
// sequence returns its value and an empty one returns 0.
func Otsu(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	low, high := sorted[0], sorted[len(sorted)-1]
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return 0
	}

	if low == high {
		return low
	}

	width := (high - low) / histogramBins
	dividers := make([]float64, histogramBins+1)
	centers := make([]float64, histogramBins)

	for i := range dividers {
		dividers[i] = low + float64(i)*width
	}

	// The upper bound is exclusive; nudge it so the maximum lands in the last bin.
	dividers[histogramBins] = math.Nextafter(high, math.Inf(1))

	for i := range centers {
		centers[i] = low + (float64(i)+0.5)*width
	}

	hist := stat.Histogram(nil, dividers, sorted, nil)

	weight1 := make([]float64, histogramBins)
	weight2 := make([]float64, histogramBins)
	mean1 := make([]float64, histogramBins)
	mean2 := make([]float64, histogramBins)

	var count, sum float64

	for i := range histogramBins {
		count += hist[i]
		sum += hist[i] * centers[i]
		weight1[i] = count

		if count > 0 {
			mean1[i] = sum / count
		}
	}

	count, sum = 0, 0

	for i := histogramBins - 1; i >= 0; i-- {
		count += hist[i]
		sum += hist[i] * centers[i]
		weight2[i] = count

		if count > 0 {
			mean2[i] = sum / count
		}
	}

	best := 0
	bestVariance := math.Inf(-1)

	for i := range histogramBins - 1 {
		diff := mean1[i] - mean2[i+1]
		variance := weight1[i] * weight2[i+1] * diff * diff

		if variance > bestVariance {
			best = i
			bestVariance = variance
		}
	}

	return centers[best]
}

// Median returns the middle value of values, averaging the two middle values of an even
// length sequence. An empty sequence returns 0.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}
