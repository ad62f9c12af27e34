package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/spectag/internal/metrics"
)

func TestObserve(t *testing.T) {
	t.Parallel()

	rec := metrics.New()
	rec.Observe("soundlab", metrics.OutcomeOK, 2*time.Second, 3)
	rec.Observe("soundlab", metrics.OutcomeTimeout, time.Second, 0)
	rec.Observe("rule-fallback", metrics.OutcomeFallback, 0, 1)

	families, err := rec.Registry.Gather()
	require.NoError(t, err)

	series := map[string]int{}
	for _, family := range families {
		series[family.GetName()] = len(family.GetMetric())
	}

	assert.Equal(t, 3, series["spectag_analyses_total"])
	assert.Equal(t, 2, series["spectag_analysis_duration_seconds"])

	path := filepath.Join(t.TempDir(), "spectag.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `spectag_suggestions_total{engine="soundlab"} 3`)
	assert.Contains(t, string(data), `spectag_analyses_total{engine="soundlab",outcome="timeout"} 1`)
}

func TestNilRecorder(t *testing.T) {
	t.Parallel()

	var rec *metrics.Recorder

	assert.NotPanics(t, func() { rec.Observe("soundlab", metrics.OutcomeOK, time.Second, 1) })
}
