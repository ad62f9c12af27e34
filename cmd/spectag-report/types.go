//nolint:tagliatelle
package main

import "encoding/json"

// Record is a single line in the JSONL report file.
type Record struct {
	File       string          `json:"file,omitempty"`
	RunID      string          `json:"run_id,omitempty"`
	Status     string          `json:"status"`
	Analysis   map[string]any  `json:"analysis,omitempty"`
	Probe      json.RawMessage `json:"probe,omitempty"`
	ProbeError string          `json:"probe_error,omitempty"`
	Error      string          `json:"error,omitempty"`
	Timing     *RecordTiming   `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	ProbeMs   float64 `json:"probe_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File     string          `json:"file,omitempty"`
	Status   string          `json:"status"`
	Analysis *digestAnalysis `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type digestAnalysis struct {
	Engine      string             `json:"engine"`
	Fallback    bool               `json:"fallback"`
	Suggestions []digestSuggestion `json:"suggestions"`
}

type digestSuggestion struct {
	Label      string  `json:"label"`
	Confidence int     `json:"confidence"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	BandType   string  `json:"band_type,omitempty"`
}

// labelBreakdown tracks per-label counts for the digest.
type labelBreakdown struct {
	Label      string
	Total      int
	Files      int
	Seconds    float64
	Confidence int // sum, for the average
}

// digest is the aggregate view printed by the digest command.
type digest struct {
	Total       int
	Statuses    map[string]int
	Engines     map[string]int
	Labels      []*labelBreakdown
	Confidences [4]int // 0-24, 25-49, 50-74, 75-100
}
