// Package noise drops ON runs too short to be anything but transient noise.
package noise

import (
	"context"
	"log/slog"

	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

// Remove turns OFF every ON run shorter than minChunks, including a run reaching the last
// chunk, and returns the number of chunks removed.
func Remove(chunks []types.Chunk, minChunks int) int {
	removed := 0
	runStart := -1

	flush := func(end int) {
		if runStart != -1 && end-runStart < minChunks {
			for k := runStart; k < end; k++ {
				chunks[k].State = types.StateOff
				chunks[k].Annotation = types.AnnotationNoiseRemoved
				removed++
			}
		}

		runStart = -1
	}

	for i := range chunks {
		if chunks[i].State == types.StateOn {
			if runStart == -1 {
				runStart = i
			}

			continue
		}

		flush(i)
	}

	flush(len(chunks))

	return removed
}

type Stage struct{}

func New() *Stage {
	return &Stage{}
}

func (*Stage) Name() string {
	return shared.StepNoiseRemoval
}

func (*Stage) Execute(_ context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	cfg := analysis.Config
	minChunks := cfg.ChunksFor(cfg.NoiseRemoval.MinSegmentDurationMinutes * 60)
	removed := Remove(analysis.Chunks, minChunks)

	analysis.Metadata["noise_removed_chunks"] = removed

	slog.Info("noise_removal",
		"min_duration_min", cfg.NoiseRemoval.MinSegmentDurationMinutes,
		"min_chunks", minChunks,
		"removed", removed,
	)

	return analysis, nil
}
