package engine

import (
	"context"

	"github.com/farcloser/spectag/internal/types"
)

// Fallback returns one fixed suggestion whatever the input. It never fails.
type Fallback struct{}

func (*Fallback) Name() string {
	return RuleFallback
}

func (*Fallback) Analyze(context.Context, string, *types.Config) ([]types.Suggestion, error) {
	return []types.Suggestion{{
		Label:       "Rule-based anomaly candidate",
		Confidence:  50,
		Description: "Generic rule-based fallback suggestion.",
		StartTime:   5.0,
		EndTime:     15.0,
		FreqLow:     800,
		FreqHigh:    4000,
	}}, nil
}
