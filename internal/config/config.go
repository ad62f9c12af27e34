// Package config loads, defaults and validates pipeline configurations.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/spectag/internal/types"
)

//go:embed default.json
var defaultDocument []byte

// Default returns the built-in configuration.
func Default() types.Config {
	var cfg types.Config

	// The embedded document is part of the binary, it cannot be malformed at runtime.
	if err := json.Unmarshal(defaultDocument, &cfg); err != nil {
		panic(fmt.Sprintf("embedded default configuration: %v", err))
	}

	return cfg
}

// Load reads a JSON configuration file and merges it over the defaults.
func Load(path string) (types.Config, error) {
	file, err := os.Open(path) //nolint:gosec // path is intentionally user-provided
	if err != nil {
		return types.Config{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	return Parse(file, Default())
}

// Parse decodes a JSON configuration document over base. Options absent from the
// document keep their base value, options present keep the document value, zero included.
func Parse(reader io.Reader, base types.Config) (types.Config, error) {
	cfg := base.Clone()

	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return types.Config{}, fmt.Errorf("%w: %w: %w", types.ErrConfiguration, fault.ErrInvalidJSON, err)
	}

	applyDefaults(&cfg)

	if err := Validate(cfg, nil); err != nil {
		return types.Config{}, err
	}

	return cfg, nil
}

// Merge overlays override on base. An override declaring bands is a complete configuration,
// as returned by Load, and replaces base outright, zero options included. Otherwise only
// the non-zero options of override apply.
func Merge(base, override types.Config) types.Config {
	if len(override.Bands) > 0 {
		out := override.Clone()
		if len(out.Steps) == 0 {
			out.Steps = slices.Clone(base.Steps)
		}

		return out
	}

	out := base.Clone()

	if len(override.Steps) > 0 {
		out.Steps = append([]string(nil), override.Steps...)
	}

	setFloat(&out.ChunkDurationSec, override.ChunkDurationSec)
	setFloat(&out.Extraction.FreqStepHz, override.Extraction.FreqStepHz)
	setFloat(&out.Threshold.Multiplier, override.Threshold.Multiplier)
	setFloat(&out.Threshold.HysteresisFactor, override.Threshold.HysteresisFactor)
	setFloat(&out.Surge.MedianMultiplier, override.Surge.MedianMultiplier)
	setFloat(&out.GapFill.MaxGapMinutes, override.GapFill.MaxGapMinutes)
	setFloat(&out.NoiseRemoval.MinSegmentDurationMinutes, override.NoiseRemoval.MinSegmentDurationMinutes)
	setFloat(&out.Trim.SafetyBufferSec, override.Trim.SafetyBufferSec)
	setFloat(&out.Trim.DropRatio, override.Trim.DropRatio)
	setFloat(&out.Trim.DropThresholdFactor, override.Trim.DropThresholdFactor)

	if override.Extraction.Stride > 0 {
		out.Extraction.Stride = override.Extraction.Stride
	}

	return out
}

func setFloat(dst *float64, value float64) {
	if value != 0 {
		*dst = value
	}
}

// applyDefaults completes band declarations. Bands declared without a role are surge bands
// when their id starts with "surge", primary otherwise.
func applyDefaults(cfg *types.Config) {
	for i := range cfg.Bands {
		band := &cfg.Bands[i]

		if band.Role == "" {
			band.Role = types.RolePrimary
			if strings.HasPrefix(band.ID, "surge") {
				band.Role = types.RoleSurge
			}
		}

		if band.Label == "" {
			band.Label = band.ID
		}
	}
}

// Validate checks structural constraints. When knownSteps is non-nil, every configured
// step must be one of them.
func Validate(cfg types.Config, knownSteps []string) error {
	if cfg.ChunkDurationSec <= 0 {
		return fmt.Errorf("%w: chunk_duration_sec must be positive, got %v", types.ErrConfiguration, cfg.ChunkDurationSec)
	}

	if cfg.Extraction.FreqStepHz <= 0 || cfg.Extraction.Stride <= 0 {
		return fmt.Errorf("%w: extraction step and stride must be positive", types.ErrConfiguration)
	}

	primaries := 0

	for i, band := range cfg.Bands {
		if band.ID == "" {
			return fmt.Errorf("%w: band with empty id", types.ErrConfiguration)
		}

		if _, dup := cfg.Bands[:i].Get(band.ID); dup {
			return fmt.Errorf("%w: duplicate band %q", types.ErrConfiguration, band.ID)
		}

		switch band.Role {
		case types.RolePrimary:
			primaries++
		case types.RoleSurge:
		default:
			return fmt.Errorf("%w: band %q has unknown role %q (expected %q or %q)",
				types.ErrConfiguration, band.ID, band.Role, types.RolePrimary, types.RoleSurge)
		}

		if band.Bandwidth < 0 || band.Frequency-band.Bandwidth < 0 {
			return fmt.Errorf("%w: band %q has an invalid frequency range", types.ErrConfiguration, band.ID)
		}

		if band.High() <= band.Low() {
			return fmt.Errorf("%w: band %q is narrower than 1 Hz", types.ErrConfiguration, band.ID)
		}
	}

	if primaries != 1 {
		return fmt.Errorf("%w: exactly one primary band is required, got %d", types.ErrConfiguration, primaries)
	}

	if surge := len(cfg.Bands.Surge()); surge == 1 {
		return fmt.Errorf("%w: a surge band needs at least one companion surge band", types.ErrConfiguration)
	}

	if knownSteps != nil {
		for _, step := range cfg.Steps {
			if !slices.Contains(knownSteps, step) {
				return fmt.Errorf("%w: unknown step %q (available: %s)",
					types.ErrConfiguration, step, strings.Join(knownSteps, ", "))
			}
		}
	}

	return nil
}
