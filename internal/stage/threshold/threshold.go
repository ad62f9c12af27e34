// Package threshold derives one detection threshold per band.
package threshold

import (
	"context"
	"log/slog"
	"math"

	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

type Stage struct{}

func New() *Stage {
	return &Stage{}
}

func (*Stage) Name() string {
	return shared.StepThreshold
}

// Execute sets the primary band threshold from Otsu's split and each surge band threshold
// from its median, both scaled by their configured multipliers.
func (*Stage) Execute(_ context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	cfg := analysis.Config

	if analysis.Thresholds == nil {
		analysis.Thresholds = map[string]float64{}
	}

	otsu := 0.0

	if primary, ok := cfg.Bands.Primary(); ok {
		otsu = Otsu(analysis.Energies[primary.ID])
		if math.IsNaN(otsu) || math.IsInf(otsu, 0) {
			otsu = 0
		}

		analysis.Thresholds[primary.ID] = otsu * cfg.Threshold.Multiplier
		analysis.Metadata["threshold_"+primary.ID] = analysis.Thresholds[primary.ID]
	}

	analysis.Metadata["otsu"] = otsu

	for _, band := range cfg.Bands.Surge() {
		analysis.Thresholds[band.ID] = Median(analysis.Energies[band.ID]) * cfg.Surge.MedianMultiplier
		analysis.Metadata["threshold_"+band.ID] = analysis.Thresholds[band.ID]
	}

	slog.Info("threshold",
		"otsu", otsu,
		"multiplier", cfg.Threshold.Multiplier,
		"threshold_id", analysis.PrimaryThreshold(),
	)

	return analysis, nil
}
