// Package synth generates deterministic test signals and writes them as WAV files.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/farcloser/spectag/internal/types"
)

const DefaultSampleRate = 44100

// Signal is a mono buffer of samples at a fixed rate.
type Signal struct {
	SampleRate int
	Samples    []float64
}

// New returns a silent signal of the given duration.
func New(sampleRate int, seconds float64) *Signal {
	return &Signal{
		SampleRate: sampleRate,
		Samples:    make([]float64, int(float64(sampleRate)*seconds)),
	}
}

// Duration returns the length of the signal in seconds.
func (s *Signal) Duration() float64 {
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

func (s *Signal) span(from, to float64) (int, int) {
	start := max(0, int(from*float64(s.SampleRate)))
	end := min(len(s.Samples), int(to*float64(s.SampleRate)))

	return start, end
}

// Tone adds a sine at freq Hz between from and to seconds. Phase is referenced to t=0.
func (s *Signal) Tone(freq, amplitude, from, to float64) *Signal {
	start, end := s.span(from, to)
	omega := 2 * math.Pi * freq / float64(s.SampleRate)

	for i := start; i < end; i++ {
		s.Samples[i] += amplitude * math.Sin(omega*float64(i))
	}

	return s
}

// Noise adds white gaussian noise of standard deviation sigma over the whole signal.
func (s *Signal) Noise(sigma float64, seed uint64) *Signal {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // deterministic fixtures

	for i := range s.Samples {
		s.Samples[i] += rng.NormFloat64() * sigma
	}

	return s
}

// Float32 returns the samples clamped to [-1, 1] as float32.
func (s *Signal) Float32() []float32 {
	out := make([]float32, len(s.Samples))
	for i, v := range s.Samples {
		out[i] = float32(math.Max(-1, math.Min(1, v)))
	}

	return out
}

// Scenario builds a named fixture signal.
type Scenario func(sampleRate int) *Signal

var scenarios = map[string]Scenario{
	"machine-on":    MachineOn,
	"startup-surge": StartupSurge,
	"silence":       Silence,
}

// Scenarios lists the registered scenario names.
func Scenarios() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Get returns a registered scenario.
func Get(name string) (Scenario, error) {
	scenario, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scenario %q (available: %v)", types.ErrConfiguration, name, Scenarios())
	}

	return scenario, nil
}

// MachineOn is 120 seconds of noise floor with a 535 Hz tone from 30 to 90 seconds.
func MachineOn(sampleRate int) *Signal {
	return New(sampleRate, 120).
		Tone(535, 0.5, 30, 90).
		Noise(0.005, 42)
}

// StartupSurge is 60 seconds of noise floor with a 60 Hz and 120 Hz burst in the first 10 seconds.
func StartupSurge(sampleRate int) *Signal {
	return New(sampleRate, 60).
		Tone(60, 0.4, 0, 10).
		Tone(120, 0.3, 0, 10).
		Noise(0.005, 43)
}

// Silence is 30 seconds of noise floor only.
func Silence(sampleRate int) *Signal {
	return New(sampleRate, 30).Noise(0.005, 44)
}
