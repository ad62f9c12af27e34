// Package pipeline runs an ordered list of stages over one analysis.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/farcloser/spectag/internal/types"
)

// Stage is one step of the analysis. It receives the analysis produced by the previous
// stage and returns the analysis for the next one.
type Stage interface {
	Name() string
	Execute(ctx context.Context, analysis *types.Analysis) (*types.Analysis, error)
}

// Pipeline is an immutable ordered list of stages. It holds no per-run state and can be
// shared by concurrent runs.
type Pipeline struct {
	stages []Stage
}

// New returns a pipeline running stages in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name()
	}

	return names
}

// Run creates a fresh analysis for source and threads it through every stage.
// Any stage error, or panic, is returned wrapped in types.ErrStageFailure.
func (p *Pipeline) Run(ctx context.Context, source string, cfg types.Config) (*types.Analysis, error) {
	analysis := types.NewAnalysis(source, cfg)

	for _, stage := range p.stages {
		name := stage.Name()
		start := time.Now()

		slog.Debug("pipeline", "step", name, "stage", "start")

		next, err := execute(ctx, stage, analysis)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrStageFailure, name, err)
		}

		if next == nil {
			return nil, fmt.Errorf("%w: %s returned no analysis", types.ErrStageFailure, name)
		}

		analysis = next
		elapsed := time.Since(start)
		analysis.Metadata["elapsed_"+name+"_ms"] = elapsed.Milliseconds()

		slog.Debug("pipeline", "step", name, "stage", "done", "elapsed", elapsed)
	}

	return analysis, nil
}

func execute(ctx context.Context, stage Stage, analysis *types.Analysis) (next *types.Analysis, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Error("stage panicked", "step", stage.Name(), "panic", recovered, "stack", string(debug.Stack()))

			next = nil
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	return stage.Execute(ctx, analysis)
}
