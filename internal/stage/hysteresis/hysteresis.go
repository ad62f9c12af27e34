// Package hysteresis classifies chunks as ON or OFF with a Schmitt-trigger style walk.
package hysteresis

import (
	"context"
	"log/slog"

	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

// Surge is the energy sequence and threshold of one surge band.
type Surge struct {
	Energies  []float64
	Threshold float64
}

func valueAt(values []float64, index int) float64 {
	if index < len(values) {
		return values[index]
	}

	return 0
}

// Walk sets the state and annotation of every chunk in time order and returns the number
// of ON chunks.
//
// From OFF, a chunk turns ON when the primary energy exceeds threshold, or when every surge
// band exceeds its own threshold in that same chunk. Without surge bands the surge trigger
// never fires. Once ON, a chunk stays ON while the primary energy is above threshold or at
// least threshold*factor, and turns OFF only below threshold*factor.
func Walk(chunks []types.Chunk, primary []float64, threshold, factor float64, surges []Surge) int {
	state := types.StateOff
	onCount := 0

	for i := range chunks {
		value := valueAt(primary, i)
		active := value > threshold

		surge := len(surges) > 0
		for _, band := range surges {
			if valueAt(band.Energies, i) <= band.Threshold {
				surge = false

				break
			}
		}

		chunk := &chunks[i]

		switch {
		case state == types.StateOff && active:
			state = types.StateOn
			chunk.Annotation = types.AnnotationPrimaryStart
		case state == types.StateOff && surge:
			state = types.StateOn
			chunk.Annotation = types.AnnotationSurgeStart
		case state == types.StateOff:
			chunk.Annotation = types.AnnotationNone
		case active:
			chunk.Annotation = types.AnnotationPrimarySustain
		case value < threshold*factor:
			state = types.StateOff
			chunk.Annotation = types.AnnotationNone
		default:
			chunk.Annotation = types.AnnotationHysteresisSustain
		}

		chunk.State = state
		if state == types.StateOn {
			onCount++
		}
	}

	return onCount
}

type Stage struct{}

func New() *Stage {
	return &Stage{}
}

func (*Stage) Name() string {
	return shared.StepStateMachine
}

func (*Stage) Execute(_ context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	cfg := analysis.Config

	var primary []float64

	if band, ok := cfg.Bands.Primary(); ok {
		primary = analysis.Energies[band.ID]
	}

	var surges []Surge

	for _, band := range cfg.Bands.Surge() {
		surges = append(surges, Surge{
			Energies:  analysis.Energies[band.ID],
			Threshold: analysis.Thresholds[band.ID],
		})
	}

	onCount := Walk(analysis.Chunks, primary, analysis.PrimaryThreshold(), cfg.Threshold.HysteresisFactor, surges)

	analysis.Metadata["on_chunks"] = onCount

	slog.Info("state_machine",
		"on_count", onCount,
		"total", len(analysis.Chunks),
		"hysteresis", cfg.Threshold.HysteresisFactor,
	)

	return analysis, nil
}
