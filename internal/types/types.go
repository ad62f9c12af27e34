package types

import "math"

type BitDepth uint

const (
	Depth8  BitDepth = 8
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes the integer sample layout of a WAV container.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// State is the activity state of a chunk.
type State int

const (
	StateOff State = iota
	StateOn
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateOn:
		return "ON"
	}

	return "unknown"
}

// Annotation names the rule that produced or sustained a chunk state.
type Annotation string

const (
	AnnotationNone              Annotation = ""
	AnnotationPrimaryStart      Annotation = "primary-start"
	AnnotationSurgeStart        Annotation = "surge-start"
	AnnotationPrimarySustain    Annotation = "primary-sustain"
	AnnotationHysteresisSustain Annotation = "hysteresis-sustain"
	AnnotationGapFilled         Annotation = "gap-filled"
	AnnotationTrimmedDropOff    Annotation = "trimmed-drop-off"
	AnnotationNoiseRemoved      Annotation = "noise-removed"
)

// Chunk is one fixed-duration analysis window. Index is the time key.
type Chunk struct {
	Index      int
	Start      float64 // seconds, Index * chunk duration
	State      State
	Annotation Annotation
}

// NewChunks lays out count contiguous chunks of the given duration, all OFF.
func NewChunks(count int, duration float64) []Chunk {
	chunks := make([]Chunk, count)
	for i := range chunks {
		chunks[i] = Chunk{
			Index: i,
			Start: float64(i) * duration,
			State: StateOff,
		}
	}

	return chunks
}

// Suggestion is a scored anomaly candidate produced from one segment of ON chunks.
//
//nolint:tagliatelle
type Suggestion struct {
	Label       string  `json:"label"`
	Confidence  int     `json:"confidence"` // 0-100
	Description string  `json:"description"`
	StartTime   float64 `json:"start_time"` // seconds
	EndTime     float64 `json:"end_time"`   // seconds, > StartTime
	FreqLow     int     `json:"freq_low"`   // Hz
	FreqHigh    int     `json:"freq_high"`  // Hz, > FreqLow
	BandType    string  `json:"band_type,omitempty"`
	MaxEnergy   float64 `json:"max_energy"`
	AvgEnergy   float64 `json:"avg_energy"`
}

// Duration returns the suggestion length in seconds.
func (s Suggestion) Duration() float64 {
	return math.Max(0, s.EndTime-s.StartTime)
}
