package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/spectag/internal/config"
	"github.com/farcloser/spectag/internal/pipeline"
	"github.com/farcloser/spectag/internal/stage/gapfill"
	"github.com/farcloser/spectag/internal/stage/noise"
	"github.com/farcloser/spectag/internal/stage/trim"
	"github.com/farcloser/spectag/internal/synth"
	"github.com/farcloser/spectag/internal/types"
)

type stubStage struct {
	name string
	run  func(*types.Analysis) (*types.Analysis, error)
}

func (s stubStage) Name() string { return s.name }

func (s stubStage) Execute(_ context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	return s.run(analysis)
}

func TestRunThreadsAnalysis(t *testing.T) {
	t.Parallel()

	var order []string

	record := func(name string) stubStage {
		return stubStage{name: name, run: func(a *types.Analysis) (*types.Analysis, error) {
			order = append(order, name)
			a.Metadata[name] = true

			return a, nil
		}}
	}

	p := pipeline.New(record("first"), record("second"))
	assert.Equal(t, []string{"first", "second"}, p.Names())

	analysis, err := p.Run(context.Background(), "source.wav", config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, "source.wav", analysis.SourcePath)
	assert.Contains(t, analysis.Metadata, "elapsed_first_ms")
	assert.Contains(t, analysis.Metadata, "elapsed_second_ms")
}

func TestRunStopsOnError(t *testing.T) {
	t.Parallel()

	reached := false
	boom := errors.New("boom")

	p := pipeline.New(
		stubStage{name: "broken", run: func(*types.Analysis) (*types.Analysis, error) { return nil, boom }},
		stubStage{name: "after", run: func(a *types.Analysis) (*types.Analysis, error) {
			reached = true

			return a, nil
		}},
	)

	_, err := p.Run(context.Background(), "x", config.Default())
	require.ErrorIs(t, err, types.ErrStageFailure)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.False(t, reached)
}

func TestRunRecoversPanics(t *testing.T) {
	t.Parallel()

	p := pipeline.New(stubStage{name: "explodes", run: func(*types.Analysis) (*types.Analysis, error) {
		panic("energy table corrupted")
	}})

	_, err := p.Run(context.Background(), "x", config.Default())
	require.ErrorIs(t, err, types.ErrStageFailure)
	assert.Contains(t, err.Error(), "energy table corrupted")
}

func TestRunRejectsNilAnalysis(t *testing.T) {
	t.Parallel()

	p := pipeline.New(stubStage{name: "lost", run: func(*types.Analysis) (*types.Analysis, error) { return nil, nil }})

	_, err := p.Run(context.Background(), "x", config.Default())
	require.ErrorIs(t, err, types.ErrStageFailure)
}

func TestBuildUnknownStep(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Build([]string{"load_audio", "magic"})
	require.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), `"magic"`)
	assert.Contains(t, err.Error(), "noise_removal")
}

func TestBuildAllSteps(t *testing.T) {
	t.Parallel()

	steps := pipeline.Steps()
	assert.Equal(t, config.Default().Steps, steps)

	p, err := pipeline.Build(steps)
	require.NoError(t, err)
	assert.Equal(t, steps, p.Names())
}

func TestPartialPipeline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, synth.WriteFile(path, synth.New(8000, 12).Tone(535, 0.5, 0, 12)))

	p, err := pipeline.Build([]string{"load_audio", "feature_extraction", "threshold"})
	require.NoError(t, err)

	analysis, err := p.Run(context.Background(), path, config.Default())
	require.NoError(t, err)

	assert.Equal(t, 8000, analysis.SampleRate)
	assert.Len(t, analysis.Chunks, 2)
	assert.Len(t, analysis.Energies["id_wide"], 2)
	assert.Contains(t, analysis.Thresholds, "id_wide")

	for _, chunk := range analysis.Chunks {
		assert.Equal(t, types.StateOff, chunk.State, "no state machine in this pipeline")
	}
}

// stableChunks lays out ON, OFF and ON runs of the given lengths, annotated the way the state
// machine leaves them.
func stableChunks(runs ...int) ([]types.Chunk, []float64) {
	var (
		chunks   []types.Chunk
		energies []float64
	)

	on := true

	for _, length := range runs {
		for k := range length {
			index := len(chunks)
			chunk := types.Chunk{Index: index, Start: float64(index) * 5, State: types.StateOff}
			energy := 1.0

			if on {
				chunk.State = types.StateOn
				chunk.Annotation = types.AnnotationPrimarySustain
				energy = 20

				if k == 0 {
					chunk.Annotation = types.AnnotationPrimaryStart
				}
			}

			chunks = append(chunks, chunk)
			energies = append(energies, energy)
		}

		on = !on
	}

	return chunks, energies
}

func TestCleanupStagesLeaveStableStatesUnchanged(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	primary, ok := cfg.Bands.Primary()
	require.True(t, ok)

	// Runs of 16 and 14 chunks outlast the one minute minimum, the 28 chunk gap exceeds the two
	// minute fill limit, and flat energies never drop off.
	want, energies := stableChunks(16, 28, 14)

	seed := func(chunks []types.Chunk) stubStage {
		return stubStage{name: "seed", run: func(a *types.Analysis) (*types.Analysis, error) {
			a.Chunks = append([]types.Chunk(nil), chunks...)
			a.Energies[primary.ID] = energies
			a.Thresholds[primary.ID] = 10

			return a, nil
		}}
	}

	chunks := want

	for pass := range 2 {
		p := pipeline.New(seed(chunks), gapfill.New(), trim.New(), noise.New())
		assert.Equal(t, []string{"seed", "gap_fill", "trim", "noise_removal"}, p.Names())

		analysis, err := p.Run(context.Background(), "stable.wav", cfg)
		require.NoError(t, err)

		assert.Equal(t, want, analysis.Chunks, "pass %d", pass)
		assert.Equal(t, 0, analysis.Metadata["gap_filled_chunks"])
		assert.Equal(t, 0, analysis.Metadata["trimmed_chunks"])
		assert.Equal(t, 0, analysis.Metadata["noise_removed_chunks"])

		chunks = analysis.Chunks
	}
}
