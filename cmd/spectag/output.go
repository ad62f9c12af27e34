//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/spectag"
	"github.com/farcloser/spectag/internal/output"
)

func outputResult(filePath string, result *spectag.Result, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		meta = output.ResultToMap(result)
	} else {
		meta = buildFriendlyOutput(result)
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a user-friendly summary of the suggestions.
func buildFriendlyOutput(result *spectag.Result) map[string]any {
	meta := map[string]any{
		"summary": summary(result),
	}

	if len(result.Suggestions) > 0 {
		lines := make([]any, 0, len(result.Suggestions))
		for _, suggestion := range result.Suggestions {
			lines = append(lines, fmt.Sprintf("[%d%%] %s: %.1fs - %.1fs (%d-%d Hz)",
				suggestion.Confidence, suggestion.Label, suggestion.StartTime, suggestion.EndTime,
				suggestion.FreqLow, suggestion.FreqHigh))
		}

		meta["suggestions"] = lines
	}

	if result.Cause != nil {
		meta["error"] = result.Cause.Error()
	}

	return meta
}

func summary(result *spectag.Result) string {
	line := fmt.Sprintf("%d suggestions (engine: %s, %s)", len(result.Suggestions), result.Engine, result.Status())
	if result.Fallback {
		line += " - primary engine did not complete"
	}

	return line
}
