package engine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/spectag/internal/engine"
	"github.com/farcloser/spectag/internal/synth"
	"github.com/farcloser/spectag/internal/types"
)

func fixture(t *testing.T, scenario synth.Scenario) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	require.NoError(t, synth.WriteFile(path, scenario(synth.DefaultSampleRate)))

	return path
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{engine.RuleFallback, engine.SoundLab}, engine.Names())

	for _, name := range engine.Names() {
		eng, err := engine.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, eng.Name())
	}

	_, err := engine.Get("soundlab_v99")
	require.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "soundlab_v99")
	assert.Contains(t, err.Error(), "rule-fallback, soundlab")
}

func TestFallbackIsFixed(t *testing.T) {
	t.Parallel()

	eng, err := engine.Get(engine.RuleFallback)
	require.NoError(t, err)

	suggestions, err := eng.Analyze(context.Background(), "/does/not/matter", nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	assert.Equal(t, types.Suggestion{
		Label:       "Rule-based anomaly candidate",
		Confidence:  50,
		Description: "Generic rule-based fallback suggestion.",
		StartTime:   5,
		EndTime:     15,
		FreqLow:     800,
		FreqHigh:    4000,
	}, suggestions[0])
}

func TestSoundLabRejectsInvalidBase(t *testing.T) {
	t.Parallel()

	_, err := engine.NewSoundLab(&types.Config{Steps: []string{"load_audio", "teleport"}})
	require.ErrorIs(t, err, types.ErrConfiguration)
}

func TestSoundLabMachineOn(t *testing.T) {
	t.Parallel()

	lab, err := engine.NewSoundLab(nil)
	require.NoError(t, err)

	suggestions, err := lab.Analyze(context.Background(), fixture(t, synth.MachineOn), nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	got := suggestions[0]
	chunk := lab.Config().ChunkDurationSec

	assert.InDelta(t, 30, got.StartTime, chunk)
	assert.InDelta(t, 90, got.EndTime, chunk)
	assert.Greater(t, got.EndTime, got.StartTime)
	assert.GreaterOrEqual(t, got.Confidence, 0)
	assert.LessOrEqual(t, got.Confidence, 100)
	assert.Equal(t, "id_wide", got.BandType)
	assert.Equal(t, 525, got.FreqLow)
	assert.Equal(t, 545, got.FreqHigh)
}

func TestSoundLabSilence(t *testing.T) {
	t.Parallel()

	lab, err := engine.NewSoundLab(nil)
	require.NoError(t, err)

	suggestions, err := lab.Analyze(context.Background(), fixture(t, synth.Silence), nil)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSoundLabStartupSurge(t *testing.T) {
	t.Parallel()

	lab, err := engine.NewSoundLab(nil)
	require.NoError(t, err)

	// Two second chunks keep the 60 Hz and 120 Hz burst out of the primary band, and the
	// shorter minimum duration keeps a ten second burst.
	override := &types.Config{
		ChunkDurationSec: 2,
		NoiseRemoval:     types.NoiseRemovalConfig{MinSegmentDurationMinutes: 0.1},
	}

	suggestions, err := lab.Analyze(context.Background(), fixture(t, synth.StartupSurge), override)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	surge := suggestions[0]
	assert.Equal(t, "surge_60", surge.BandType)
	assert.Equal(t, "Startup surge", surge.Label)
	assert.Equal(t, 55, surge.FreqLow)
	assert.Equal(t, 65, surge.FreqHigh)
	assert.InDelta(t, 0, surge.StartTime, 1e-9)
	assert.GreaterOrEqual(t, surge.EndTime, 10.0)
}

func TestSoundLabMissingFile(t *testing.T) {
	t.Parallel()

	lab, err := engine.NewSoundLab(nil)
	require.NoError(t, err)

	_, err = lab.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), nil)
	require.ErrorIs(t, err, types.ErrStageFailure)
	require.ErrorIs(t, err, types.ErrDecode)
}

func TestSoundLabPartialSteps(t *testing.T) {
	t.Parallel()

	lab, err := engine.NewSoundLab(nil)
	require.NoError(t, err)

	// Without the state machine every chunk stays OFF.
	suggestions, err := lab.Analyze(context.Background(), fixture(t, synth.MachineOn),
		&types.Config{Steps: []string{"load_audio", "feature_extraction", "threshold"}})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
