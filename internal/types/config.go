//nolint:tagliatelle
package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/farcloser/primordium/fault"
)

// Role tells whether a band is the primary identification band or an auxiliary surge band.
type Role string

const (
	RolePrimary Role = "primary"
	RoleSurge   Role = "surge"
)

// Band is a named frequency region whose energy is tracked per chunk.
type Band struct {
	ID        string  `json:"-"`
	Frequency float64 `json:"freq"` // center, Hz
	Bandwidth float64 `json:"bw"`   // half-width, Hz
	Label     string  `json:"label"`
	Role      Role    `json:"role"`
}

// Low returns the lower edge of the band in Hz, truncated to an integer.
func (b Band) Low() int {
	return int(b.Frequency - b.Bandwidth)
}

// High returns the upper edge of the band in Hz, truncated to an integer.
func (b Band) High() int {
	return int(b.Frequency + b.Bandwidth)
}

// Bands keeps bands in declaration order. It is encoded as a JSON object keyed by band id.
type Bands []Band

// Get returns the band with the given id.
func (bands Bands) Get(id string) (Band, bool) {
	for _, band := range bands {
		if band.ID == id {
			return band, true
		}
	}

	return Band{}, false
}

// Primary returns the first band with the primary role.
func (bands Bands) Primary() (Band, bool) {
	for _, band := range bands {
		if band.Role == RolePrimary {
			return band, true
		}
	}

	return Band{}, false
}

// Surge returns the surge bands in declaration order.
func (bands Bands) Surge() Bands {
	var surge Bands

	for _, band := range bands {
		if band.Role == RoleSurge {
			surge = append(surge, band)
		}
	}

	return surge
}

// UnmarshalJSON decodes a JSON object of band id to band, preserving key order.
func (bands *Bands) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: bands: %w", fault.ErrInvalidJSON, err)
	}

	if tok == nil {
		*bands = nil

		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: bands must be an object keyed by band id", fault.ErrInvalidJSON)
	}

	var out Bands

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: bands: %w", fault.ErrInvalidJSON, err)
		}

		key, _ := keyTok.(string)

		var band Band
		if err := dec.Decode(&band); err != nil {
			return fmt.Errorf("%w: band %q: %w", fault.ErrInvalidJSON, key, err)
		}

		band.ID = key
		out = append(out, band)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: bands: %w", fault.ErrInvalidJSON, err)
	}

	*bands = out

	return nil
}

// MarshalJSON encodes bands as a JSON object keyed by band id, in declaration order.
func (bands Bands) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, band := range bands {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(band.ID)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(band)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// ExtractionConfig tunes the band energy estimator speed/accuracy trade-off.
type ExtractionConfig struct {
	FreqStepHz float64 `json:"freq_step_hz"` // sweep step (default 0.5)
	Stride     int     `json:"stride"`       // sample stride (default 8)
}

// ThresholdConfig configures the primary band threshold and hysteresis.
type ThresholdConfig struct {
	Multiplier       float64 `json:"multiplier"`        // Otsu multiplier (default 1.5)
	HysteresisFactor float64 `json:"hysteresis_factor"` // release level relative to threshold (default 0.8)
}

// SurgeConfig configures surge band thresholds.
type SurgeConfig struct {
	MedianMultiplier float64 `json:"median_multiplier"` // default 2.0
}

// GapFillConfig configures gap filling between ON runs.
type GapFillConfig struct {
	MaxGapMinutes float64 `json:"max_gap_minutes"` // default 2.0
}

// NoiseRemovalConfig configures short run removal.
type NoiseRemovalConfig struct {
	MinSegmentDurationMinutes float64 `json:"min_segment_duration_minutes"` // default 1.0
}

// TrimConfig configures drop-off trimming of long runs.
type TrimConfig struct {
	SafetyBufferSec     float64 `json:"safety_buffer_sec"`     // default 60
	DropRatio           float64 `json:"drop_ratio"`            // default 0.5
	DropThresholdFactor float64 `json:"drop_threshold_factor"` // default 0.5
}

// Config is the full set of tunable pipeline parameters for one run.
type Config struct {
	Steps            []string           `json:"steps"`
	ChunkDurationSec float64            `json:"chunk_duration_sec"` // default 5
	Bands            Bands              `json:"bands"`
	Extraction       ExtractionConfig   `json:"extraction"`
	Threshold        ThresholdConfig    `json:"threshold"`
	Surge            SurgeConfig        `json:"surge"`
	GapFill          GapFillConfig      `json:"gap_fill"`
	NoiseRemoval     NoiseRemovalConfig `json:"noise_removal"`
	Trim             TrimConfig         `json:"trim"`
}

// Clone returns a deep copy so that a run never shares slices with its caller.
func (c Config) Clone() Config {
	out := c
	out.Steps = append([]string(nil), c.Steps...)
	out.Bands = append(Bands(nil), c.Bands...)

	return out
}

// ChunksFor converts a duration in seconds into a whole number of chunks, truncating.
// Quotients within 1e-9 of the next integer round up to it.
func (c Config) ChunksFor(seconds float64) int {
	if c.ChunkDurationSec <= 0 {
		return 0
	}

	return int(seconds/c.ChunkDurationSec + 1e-9)
}
