package spectag

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/spectag/internal/engine"
	"github.com/farcloser/spectag/internal/metrics"
	"github.com/farcloser/spectag/internal/synth"
)

type stubEngine struct {
	name    string
	analyze func(ctx context.Context) ([]Suggestion, error)
	calls   atomic.Int32
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Analyze(ctx context.Context, _ string, _ *Config) ([]Suggestion, error) {
	s.calls.Add(1)

	return s.analyze(ctx)
}

var fixedFallback = Suggestion{
	Label:       "Rule-based anomaly candidate",
	Confidence:  50,
	Description: "Generic rule-based fallback suggestion.",
	StartTime:   5,
	EndTime:     15,
	FreqLow:     800,
	FreqHigh:    4000,
}

func TestNewUnknownEngine(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Engine: "soundlab_v57"})
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "soundlab_v57")
	assert.Contains(t, err.Error(), "rule-fallback")
}

func TestRunSuccess(t *testing.T) {
	t.Parallel()

	want := []Suggestion{{Label: "x", StartTime: 1, EndTime: 2, FreqLow: 1, FreqHigh: 2}}
	primary := &stubEngine{name: "stub", analyze: func(context.Context) ([]Suggestion, error) { return want, nil }}

	rec := metrics.New()
	service := NewWithEngine(primary, Options{Timeout: time.Second, Metrics: rec})

	result := service.Run(context.Background(), "a.wav", nil)
	assert.Equal(t, want, result.Suggestions)
	assert.False(t, result.Fallback)
	assert.NoError(t, result.Cause)
	assert.Equal(t, "stub", result.Engine)
	assert.Equal(t, StatusDone, result.Status())
	assert.NotEmpty(t, result.RunID)
}

func TestRunFailureFallsBack(t *testing.T) {
	t.Parallel()

	primary := &stubEngine{name: "stub", analyze: func(context.Context) ([]Suggestion, error) {
		return nil, fmt.Errorf("%w: exploded", ErrStageFailure)
	}}

	service := NewWithEngine(primary, Options{Timeout: time.Second})

	result := service.Run(context.Background(), "a.wav", nil)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, fixedFallback, result.Suggestions[0])
	assert.True(t, result.Fallback)
	assert.Equal(t, engine.RuleFallback, result.Engine)
	require.ErrorIs(t, result.Cause, ErrStageFailure)
	assert.Equal(t, StatusFallback, result.Status())

	suggestions, err := service.Analyze(context.Background(), "a.wav", nil)
	require.NoError(t, err)
	assert.Equal(t, []Suggestion{fixedFallback}, suggestions)
}

func TestRunPanicFallsBack(t *testing.T) {
	t.Parallel()

	primary := &stubEngine{name: "stub", analyze: func(context.Context) ([]Suggestion, error) {
		panic("unexpected")
	}}

	result := NewWithEngine(primary, Options{Timeout: time.Second}).Run(context.Background(), "a.wav", nil)
	assert.True(t, result.Fallback)
	require.ErrorIs(t, result.Cause, ErrStageFailure)
	assert.Equal(t, []Suggestion{fixedFallback}, result.Suggestions)
}

func TestRunTimeoutAbandonsWorker(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	primary := &stubEngine{name: "stub", analyze: func(context.Context) ([]Suggestion, error) {
		// Ignores cancellation on purpose.
		<-release

		return []Suggestion{{Label: "late"}}, nil
	}}

	service := NewWithEngine(primary, Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	result := service.Run(context.Background(), "a.wav", nil)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, result.Fallback)
	require.ErrorIs(t, result.Cause, ErrTimeout)
	assert.Equal(t, []Suggestion{fixedFallback}, result.Suggestions)
	assert.Equal(t, StatusFallback, result.Status())
}

func TestRunFallbackAsPrimaryReturnsEmpty(t *testing.T) {
	t.Parallel()

	primary := &stubEngine{name: engine.RuleFallback, analyze: func(context.Context) ([]Suggestion, error) {
		return nil, errors.New("broken")
	}}

	service := NewWithEngine(primary, Options{Timeout: time.Second})
	fallback := &stubEngine{name: engine.RuleFallback, analyze: func(context.Context) ([]Suggestion, error) {
		return []Suggestion{fixedFallback}, nil
	}}
	service.fallback = fallback

	result := service.Run(context.Background(), "a.wav", nil)
	assert.True(t, result.Fallback)
	assert.Empty(t, result.Suggestions)
	assert.NotNil(t, result.Suggestions)
	assert.Equal(t, int32(1), primary.calls.Load(), "no retry")
	assert.Zero(t, fallback.calls.Load())
}

func TestRunFallbackFailureReturnsEmpty(t *testing.T) {
	t.Parallel()

	primary := &stubEngine{name: "stub", analyze: func(context.Context) ([]Suggestion, error) {
		return nil, errors.New("broken")
	}}

	service := NewWithEngine(primary, Options{Timeout: time.Second})
	service.fallback = &stubEngine{name: engine.RuleFallback, analyze: func(context.Context) ([]Suggestion, error) {
		return nil, errors.New("also broken")
	}}

	suggestions, err := service.Analyze(context.Background(), "a.wav", nil)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestRunConfigurationErrorIsReturned(t *testing.T) {
	t.Parallel()

	primary := &stubEngine{name: "stub", analyze: func(context.Context) ([]Suggestion, error) {
		return nil, fmt.Errorf("%w: unknown step", ErrConfiguration)
	}}

	service := NewWithEngine(primary, Options{Timeout: time.Second})

	result := service.Run(context.Background(), "a.wav", nil)
	assert.False(t, result.Fallback)
	assert.Equal(t, StatusAnalysisFailed, result.Status())

	_, err := service.Analyze(context.Background(), "a.wav", nil)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestServiceEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "machine.wav")
	require.NoError(t, synth.WriteFile(path, synth.MachineOn(synth.DefaultSampleRate)))

	service, err := New(DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, engine.SoundLab, service.Name())

	suggestions, err := service.Analyze(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.InDelta(t, 30, suggestions[0].StartTime, 5)
	assert.InDelta(t, 90, suggestions[0].EndTime, 5)

	// An unreadable file degrades to the fallback and reports a failed analysis.
	result := service.Run(context.Background(), filepath.Join(dir, "missing.wav"), nil)
	assert.True(t, result.Fallback)
	require.ErrorIs(t, result.Cause, ErrDecode)
	assert.Equal(t, StatusAnalysisFailed, result.Status())
	assert.Equal(t, []Suggestion{fixedFallback}, result.Suggestions)
}
