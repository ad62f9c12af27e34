package pipeline

import (
	"fmt"
	"strings"

	"github.com/farcloser/spectag/internal/stage/bandenergy"
	"github.com/farcloser/spectag/internal/stage/gapfill"
	"github.com/farcloser/spectag/internal/stage/hysteresis"
	"github.com/farcloser/spectag/internal/stage/load"
	"github.com/farcloser/spectag/internal/stage/noise"
	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/stage/threshold"
	"github.com/farcloser/spectag/internal/stage/trim"
	"github.com/farcloser/spectag/internal/types"
)

var registry = []struct {
	name string
	make func() Stage
}{
	{shared.StepLoadAudio, func() Stage { return load.New() }},
	{shared.StepFeatureExtraction, func() Stage { return bandenergy.New() }},
	{shared.StepThreshold, func() Stage { return threshold.New() }},
	{shared.StepStateMachine, func() Stage { return hysteresis.New() }},
	{shared.StepGapFill, func() Stage { return gapfill.New() }},
	{shared.StepTrim, func() Stage { return trim.New() }},
	{shared.StepNoiseRemoval, func() Stage { return noise.New() }},
}

// Steps lists the registered step names in canonical order.
func Steps() []string {
	names := make([]string, len(registry))
	for i, entry := range registry {
		names[i] = entry.name
	}

	return names
}

// Build assembles a pipeline from step names, in the given order.
func Build(names []string) (*Pipeline, error) {
	stages := make([]Stage, 0, len(names))

	for _, name := range names {
		stage, err := lookup(name)
		if err != nil {
			return nil, err
		}

		stages = append(stages, stage)
	}

	return New(stages...), nil
}

func lookup(name string) (Stage, error) {
	for _, entry := range registry {
		if entry.name == name {
			return entry.make(), nil
		}
	}

	return nil, fmt.Errorf("%w: unknown step %q (available: %s)",
		types.ErrConfiguration, name, strings.Join(Steps(), ", "))
}
