// Package segment merges ON chunks into scored suggestions.
package segment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/spectag/internal/types"
)

// Confidence maps a segment's peak energy relative to the detection threshold onto [0, 100].
//
//	ratio < 0.8        0
//	0.8 <= ratio <= 1  0 to 50
//	1 < ratio <= 2     50 to 95
//	ratio > 2          95 + 2.5 per unit, capped at 100
//
// A non-positive threshold yields 50. Each piece truncates toward zero.
func Confidence(energy, threshold float64) int {
	if threshold <= 0 {
		return 50
	}

	ratio := energy / threshold

	switch {
	case math.IsNaN(ratio) || ratio < 0.8:
		return 0
	case ratio <= 1:
		return truncate((ratio - 0.8) / 0.2 * 50)
	case ratio <= 2:
		return truncate(50 + (ratio-1)*45)
	default:
		return min(100, truncate(95+(ratio-2)*2.5))
	}
}

// truncate drops the fractional part, treating values within 1e-9 below an integer as that integer.
func truncate(value float64) int {
	return int(value + 1e-9)
}

// Aggregate walks the final chunk states once and returns one suggestion per maximal run of
// ON chunks, in time order.
func Aggregate(analysis *types.Analysis) []types.Suggestion {
	cfg := analysis.Config
	primary, _ := cfg.Bands.Primary()
	surge := cfg.Bands.Surge()
	threshold := analysis.Thresholds[primary.ID]

	var suggestions []types.Suggestion

	start := -1

	flush := func(end int) {
		if start == -1 {
			return
		}

		run := analysis.Chunks[start:end]
		values := make([]float64, len(run))
		surged := false

		for i, chunk := range run {
			values[i] = analysis.Energy(primary.ID, chunk.Index)

			if chunk.Annotation == types.AnnotationSurgeStart {
				surged = true
			}
		}

		band := primary
		if surged && len(surge) > 0 {
			band = surge[0]
		}

		suggestions = append(suggestions, build(run, values, band, threshold, cfg.ChunkDurationSec))
		start = -1
	}

	for i, chunk := range analysis.Chunks {
		if chunk.State == types.StateOn {
			if start == -1 {
				start = i
			}

			continue
		}

		flush(i)
	}

	flush(len(analysis.Chunks))

	return suggestions
}

func build(run []types.Chunk, values []float64, band types.Band, threshold, chunkDuration float64) types.Suggestion {
	startTime := run[0].Start
	endTime := run[len(run)-1].Start + chunkDuration
	maxEnergy := floats.Max(values)
	confidence := Confidence(maxEnergy, threshold)

	return types.Suggestion{
		Label:       band.Label,
		Confidence:  confidence,
		Description: fmt.Sprintf("%s (%.0fs ~ %.0fs), confidence %d%%", band.Label, startTime, endTime, confidence),
		StartTime:   startTime,
		EndTime:     endTime,
		FreqLow:     band.Low(),
		FreqHigh:    band.High(),
		BandType:    band.ID,
		MaxEnergy:   maxEnergy,
		AvgEnergy:   stat.Mean(values, nil),
	}
}
