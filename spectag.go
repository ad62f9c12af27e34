package spectag

import (
	"github.com/farcloser/spectag/internal/config"
	"github.com/farcloser/spectag/internal/engine"
	"github.com/farcloser/spectag/internal/pipeline"
	"github.com/farcloser/spectag/internal/types"
)

/*
Usage:

service, err := spectag.New(spectag.DefaultOptions())
if err != nil {
    return err // unknown engine
}

suggestions, err := service.Analyze(ctx, "recording.wav", nil)
for _, s := range suggestions {
    fmt.Printf("%s %.0fs-%.0fs %d%%\n", s.Label, s.StartTime, s.EndTime, s.Confidence)
}

// Per-call overrides, only non-zero options apply
cfg := spectag.Config{ChunkDurationSec: 2}
suggestions, err = service.Analyze(ctx, "recording.wav", &cfg)

// Full outcome, for batch callers that report a status per file
result := service.Run(ctx, "recording.wav", nil)
fmt.Println(result.Status(), result.Engine, result.Fallback)

*/

type (
	// Config is the set of tunable pipeline parameters.
	Config = types.Config
	// Band is a tracked frequency region.
	Band = types.Band
	// Suggestion is one scored anomaly candidate.
	Suggestion = types.Suggestion
	// Engine turns an audio source into suggestions.
	Engine = engine.Engine
)

var (
	ErrDecode        = types.ErrDecode
	ErrConfiguration = types.ErrConfiguration
	ErrStageFailure  = types.ErrStageFailure
	ErrTimeout       = types.ErrTimeout
)

// Engines lists the registered engine names.
func Engines() []string {
	return engine.Names()
}

// DefaultConfig returns the built-in pipeline configuration.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a JSON configuration file over the built-in defaults.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Steps lists the pipeline steps in execution order.
func Steps() []string {
	return pipeline.Steps()
}
