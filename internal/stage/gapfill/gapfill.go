// Package gapfill merges ON runs separated by short OFF gaps.
package gapfill

import (
	"context"
	"log/slog"

	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

// Fill turns ON every OFF chunk lying between two ON chunks when the OFF gap lasts more than
// zero and at most maxGapMinutes. It never turns a chunk OFF and returns the number of
// chunks it filled.
func Fill(chunks []types.Chunk, chunkDuration, maxGapMinutes float64) int {
	filled := 0
	lastOn := -1

	for i := range chunks {
		if chunks[i].State != types.StateOn {
			continue
		}

		if lastOn != -1 {
			gapMinutes := float64(i-lastOn-1) * chunkDuration / 60

			if gapMinutes > 0 && gapMinutes <= maxGapMinutes+shared.Tolerance {
				for k := lastOn + 1; k < i; k++ {
					chunks[k].State = types.StateOn
					chunks[k].Annotation = types.AnnotationGapFilled
					filled++
				}
			}
		}

		lastOn = i
	}

	return filled
}

type Stage struct{}

func New() *Stage {
	return &Stage{}
}

func (*Stage) Name() string {
	return shared.StepGapFill
}

func (*Stage) Execute(_ context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	cfg := analysis.Config
	filled := Fill(analysis.Chunks, cfg.ChunkDurationSec, cfg.GapFill.MaxGapMinutes)

	analysis.Metadata["gap_filled_chunks"] = filled

	slog.Info("gap_fill", "max_gap_min", cfg.GapFill.MaxGapMinutes, "filled", filled)

	return analysis, nil
}
