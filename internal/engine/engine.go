// Package engine provides named analysis engines.
package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/farcloser/spectag/internal/types"
)

const (
	SoundLab     = "soundlab"
	RuleFallback = "rule-fallback"
)

// Engine turns an audio source into suggestions. A nil override runs the engine's own
// configuration; otherwise non-zero override options replace it for that call only.
type Engine interface {
	Name() string
	Analyze(ctx context.Context, source string, override *types.Config) ([]types.Suggestion, error)
}

var registry = map[string]func() (Engine, error){
	SoundLab:     newSoundLab,
	RuleFallback: func() (Engine, error) { return &Fallback{}, nil },
}

func newSoundLab() (Engine, error) {
	lab, err := NewSoundLab(nil)
	if err != nil {
		return nil, err
	}

	return lab, nil
}

// Names lists the registered engine names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Get constructs the engine registered under name.
func Get(name string) (Engine, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown engine %q (available: %s)",
			types.ErrConfiguration, name, strings.Join(Names(), ", "))
	}

	return factory()
}
