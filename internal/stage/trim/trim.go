// Package trim cuts the tail of long ON runs after a sharp energy drop-off.
package trim

import (
	"context"
	"log/slog"

	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

// Options are the drop-off detection parameters, in chunks and ratios.
type Options struct {
	SafetyChunks        int
	DropRatio           float64
	DropThresholdFactor float64
}

// Trim scans every ON run. Past SafetyChunks from the start of the run, a chunk whose energy
// is below DropRatio times the previous chunk's energy and below threshold*DropThresholdFactor
// ends the run: it and every following ON chunk up to the next OFF chunk are turned OFF.
// It returns the number of chunks it turned OFF.
func Trim(chunks []types.Chunk, energies []float64, threshold float64, opts Options) int {
	trimmed := 0
	runStart := -1

	for i := range chunks {
		if chunks[i].State != types.StateOn {
			runStart = -1

			continue
		}

		if runStart == -1 {
			runStart = i
		}

		if i <= runStart+opts.SafetyChunks || i == 0 {
			continue
		}

		prev := valueAt(energies, i-1)
		curr := valueAt(energies, i)

		ratio := 1.0
		if prev > 0 {
			ratio = curr / prev
		}

		if ratio >= opts.DropRatio || curr >= threshold*opts.DropThresholdFactor {
			continue
		}

		for k := i; k < len(chunks) && chunks[k].State == types.StateOn; k++ {
			chunks[k].State = types.StateOff
			chunks[k].Annotation = types.AnnotationTrimmedDropOff
			trimmed++
		}

		runStart = -1
	}

	return trimmed
}

func valueAt(values []float64, index int) float64 {
	if index < len(values) {
		return values[index]
	}

	return 0
}

type Stage struct{}

func New() *Stage {
	return &Stage{}
}

func (*Stage) Name() string {
	return shared.StepTrim
}

func (*Stage) Execute(_ context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	cfg := analysis.Config

	var energies []float64

	if band, ok := cfg.Bands.Primary(); ok {
		energies = analysis.Energies[band.ID]
	}

	trimmed := Trim(analysis.Chunks, energies, analysis.PrimaryThreshold(), Options{
		SafetyChunks:        cfg.ChunksFor(cfg.Trim.SafetyBufferSec),
		DropRatio:           cfg.Trim.DropRatio,
		DropThresholdFactor: cfg.Trim.DropThresholdFactor,
	})

	analysis.Metadata["trimmed_chunks"] = trimmed

	slog.Info("trim", "safety_sec", cfg.Trim.SafetyBufferSec, "trimmed", trimmed)

	return analysis, nil
}
