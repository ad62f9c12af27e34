package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/farcloser/spectag/internal/config"
	"github.com/farcloser/spectag/internal/pipeline"
	"github.com/farcloser/spectag/internal/segment"
	"github.com/farcloser/spectag/internal/types"
)

// Analyzer runs the signal pipeline and aggregates the resulting segments.
type Analyzer struct {
	base     types.Config
	pipeline *pipeline.Pipeline
}

// NewSoundLab returns the pipeline engine. A nil base uses the built-in configuration.
func NewSoundLab(base *types.Config) (*Analyzer, error) {
	cfg := config.Default()
	if base != nil {
		cfg = config.Merge(cfg, *base)
	}

	if err := config.Validate(cfg, pipeline.Steps()); err != nil {
		return nil, err
	}

	built, err := pipeline.Build(cfg.Steps)
	if err != nil {
		return nil, err
	}

	return &Analyzer{base: cfg, pipeline: built}, nil
}

func (*Analyzer) Name() string {
	return SoundLab
}

// Config returns a copy of the engine configuration.
func (a *Analyzer) Config() types.Config {
	return a.base.Clone()
}

func (a *Analyzer) Analyze(ctx context.Context, source string, override *types.Config) ([]types.Suggestion, error) {
	cfg := a.base
	run := a.pipeline

	if override != nil {
		cfg = config.Merge(a.base, *override)

		if err := config.Validate(cfg, pipeline.Steps()); err != nil {
			return nil, err
		}

		if !slices.Equal(cfg.Steps, a.base.Steps) {
			built, err := pipeline.Build(cfg.Steps)
			if err != nil {
				return nil, err
			}

			run = built
		}
	}

	analysis, err := run.Run(ctx, source, cfg)
	if err != nil {
		return nil, err
	}

	suggestions := segment.Aggregate(analysis)

	slog.Debug("soundlab.Analyze", "file", source, "chunks", len(analysis.Chunks), "suggestions", len(suggestions))

	return suggestions, nil
}
