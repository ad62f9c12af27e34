package hysteresis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/spectag/internal/config"
	"github.com/farcloser/spectag/internal/stage/hysteresis"
	"github.com/farcloser/spectag/internal/types"
)

func states(chunks []types.Chunk) string {
	out := make([]byte, len(chunks))
	for i, chunk := range chunks {
		out[i] = '_'
		if chunk.State == types.StateOn {
			out[i] = '#'
		}
	}

	return string(out)
}

func TestWalkTransitions(t *testing.T) {
	t.Parallel()

	chunks := types.NewChunks(6, 5)
	primary := []float64{1, 11, 9, 12, 7, 9}

	onCount := hysteresis.Walk(chunks, primary, 10, 0.8, nil)

	assert.Equal(t, "_###__", states(chunks))
	assert.Equal(t, 3, onCount)
	assert.Equal(t, []types.Annotation{
		types.AnnotationNone,
		types.AnnotationPrimaryStart,
		types.AnnotationHysteresisSustain,
		types.AnnotationPrimarySustain,
		types.AnnotationNone,
		types.AnnotationNone,
	}, []types.Annotation{
		chunks[0].Annotation, chunks[1].Annotation, chunks[2].Annotation,
		chunks[3].Annotation, chunks[4].Annotation, chunks[5].Annotation,
	})
}

func TestWalkHoldsThroughOscillation(t *testing.T) {
	t.Parallel()

	const threshold = 100.0

	primary := []float64{10, 150}
	for i := range 20 {
		if i%2 == 0 {
			primary = append(primary, 0.85*threshold)
		} else {
			primary = append(primary, 0.95*threshold)
		}
	}

	chunks := types.NewChunks(len(primary), 5)
	hysteresis.Walk(chunks, primary, threshold, 0.8, nil)

	assert.Equal(t, types.StateOff, chunks[0].State)

	for i := 1; i < len(chunks); i++ {
		require.Equal(t, types.StateOn, chunks[i].State, "chunk %d", i)
	}
}

func TestWalkOscillationWithoutTriggerStaysOff(t *testing.T) {
	t.Parallel()

	primary := []float64{85, 95, 85, 95, 100}
	chunks := types.NewChunks(len(primary), 5)

	assert.Zero(t, hysteresis.Walk(chunks, primary, 100, 0.8, nil), "equal to threshold is not above it")
}

func TestWalkSurgeRequiresAllBands(t *testing.T) {
	t.Parallel()

	primary := []float64{0, 0, 0}
	surges := []hysteresis.Surge{
		{Energies: []float64{5, 5, 0}, Threshold: 1},
		{Energies: []float64{0, 5, 5}, Threshold: 1},
	}

	chunks := types.NewChunks(3, 5)
	hysteresis.Walk(chunks, primary, 10, 0.8, surges)

	assert.Equal(t, types.StateOff, chunks[0].State, "only the first surge band is above its threshold")
	assert.Equal(t, types.StateOn, chunks[1].State)
	assert.Equal(t, types.AnnotationSurgeStart, chunks[1].Annotation)
	assert.Equal(t, types.StateOff, chunks[2].State, "surge does not sustain an ON run")
}

func TestWalkNoSurgeBands(t *testing.T) {
	t.Parallel()

	chunks := types.NewChunks(3, 5)
	assert.Zero(t, hysteresis.Walk(chunks, []float64{0, 0, 0}, 10, 0.8, []hysteresis.Surge{}))
}

func TestWalkMissingEnergiesReadAsZero(t *testing.T) {
	t.Parallel()

	chunks := types.NewChunks(4, 5)
	hysteresis.Walk(chunks, []float64{20, 20}, 10, 0.8, nil)

	assert.Equal(t, "##__", states(chunks))
}

func TestExecute(t *testing.T) {
	t.Parallel()

	analysis := types.NewAnalysis("mem", config.Default())
	analysis.Chunks = types.NewChunks(4, 5)
	analysis.Energies = map[string][]float64{
		"id_wide":   {0, 20, 0, 0},
		"surge_60":  {0, 0, 0, 9},
		"surge_120": {0, 0, 0, 9},
	}
	analysis.Thresholds = map[string]float64{"id_wide": 10, "surge_60": 5, "surge_120": 5}

	analysis, err := hysteresis.New().Execute(context.Background(), analysis)
	require.NoError(t, err)

	assert.Equal(t, "_#_#", states(analysis.Chunks))
	assert.Equal(t, types.AnnotationSurgeStart, analysis.Chunks[3].Annotation)
	assert.Equal(t, 2, analysis.Metadata["on_chunks"])
}
