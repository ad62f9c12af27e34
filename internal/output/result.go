// Package output provides shared result serialization for spectag JSON output.
package output

import (
	"github.com/farcloser/spectag"
)

// ResultToMap converts an analysis result into the canonical map structure
// used for JSON and JSONL serialization.
func ResultToMap(result *spectag.Result) map[string]any {
	meta := map[string]any{
		"run_id":      result.RunID,
		"engine":      result.Engine,
		"status":      result.Status(),
		"fallback":    result.Fallback,
		"elapsed_ms":  result.Elapsed.Milliseconds(),
		"suggestions": SuggestionsToMap(result.Suggestions),
	}

	if result.Cause != nil {
		meta["error"] = result.Cause.Error()
	}

	return meta
}

// SuggestionsToMap converts suggestions to a list of maps, preserving order.
func SuggestionsToMap(suggestions []spectag.Suggestion) []any {
	out := make([]any, 0, len(suggestions))
	for i := range suggestions {
		out = append(out, SuggestionToMap(&suggestions[i]))
	}

	return out
}

// SuggestionToMap converts one suggestion to a map.
func SuggestionToMap(suggestion *spectag.Suggestion) map[string]any {
	meta := map[string]any{
		"label":       suggestion.Label,
		"confidence":  suggestion.Confidence,
		"description": suggestion.Description,
		"start_time":  suggestion.StartTime,
		"end_time":    suggestion.EndTime,
		"duration":    suggestion.Duration(),
		"freq_low":    suggestion.FreqLow,
		"freq_high":   suggestion.FreqHigh,
		"max_energy":  suggestion.MaxEnergy,
		"avg_energy":  suggestion.AvgEnergy,
	}

	if suggestion.BandType != "" {
		meta["band_type"] = suggestion.BandType
	}

	return meta
}
