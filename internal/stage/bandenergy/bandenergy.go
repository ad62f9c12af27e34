// Package bandenergy computes per-chunk narrow-band energies for every configured band.
package bandenergy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

type Stage struct{}

func New() *Stage {
	return &Stage{}
}

func (*Stage) Name() string {
	return shared.StepFeatureExtraction
}

// Execute splits the signal into whole chunks, dropping a trailing partial one, and records
// the energy of every band for every chunk.
func (*Stage) Execute(ctx context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	cfg := analysis.Config
	chunkSamples := int(cfg.ChunkDurationSec * float64(analysis.SampleRate))

	numChunks := 0
	if chunkSamples > 0 {
		numChunks = len(analysis.Signal) / chunkSamples
	}

	slog.Debug("bandenergy.Execute", "chunks", numChunks, "chunk_samples", chunkSamples, "stage", "start")

	analysis.Chunks = types.NewChunks(numChunks, cfg.ChunkDurationSec)
	analysis.Energies = make(map[string][]float64, len(cfg.Bands))

	stride := cfg.Extraction.Stride
	n := StridedLength(chunkSamples, stride)

	estimators := make([]*Estimator, len(cfg.Bands))
	for i, band := range cfg.Bands {
		analysis.Energies[band.ID] = make([]float64, numChunks)

		if numChunks > 0 {
			freqs := Frequencies(band.Frequency, band.Bandwidth, cfg.Extraction.FreqStepHz)
			estimators[i] = NewEstimator(analysis.SampleRate, freqs, n, stride)
		}
	}

	window := make([]float64, n)

	for index := range numChunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("band energy interrupted at chunk %d: %w", index, err)
		}

		start := index * chunkSamples
		Strided(window, analysis.Signal[start:start+chunkSamples], stride)

		for i, band := range cfg.Bands {
			analysis.Energies[band.ID][index] = estimators[i].Energy(window)
		}
	}

	analysis.Metadata["num_chunks"] = numChunks
	analysis.Metadata["chunk_duration_sec"] = cfg.ChunkDurationSec

	bandIDs := make([]string, len(cfg.Bands))
	for i, band := range cfg.Bands {
		bandIDs[i] = band.ID
	}

	slog.Info("feature_extraction", "chunks", numChunks, "bands", bandIDs)

	return analysis, nil
}
