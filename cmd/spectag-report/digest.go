package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/spectag"
)

var errDigestArgs = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a spectag JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "label",
				Usage: "Show the files and segments carrying a specific label",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.String("label"))
		},
	}
}

func runDigest(reportPath, labelFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(os.Stdout, summarize(records))

	if labelFilter != "" {
		printLabelDetail(os.Stdout, records, labelFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	return decodeRecords(file)
}

func decodeRecords(reader io.Reader) ([]digestRecord, error) {
	var records []digestRecord

	scanner := bufio.NewScanner(reader)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Status: spectag.StatusSaveFailed, Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func confidenceBucket(confidence int) int {
	return min(max(confidence, 0)/25, 3)
}

func summarize(records []digestRecord) *digest {
	result := &digest{
		Total:    len(records),
		Statuses: map[string]int{},
		Engines:  map[string]int{},
	}

	labels := map[string]*labelBreakdown{}

	for _, rec := range records {
		result.Statuses[rec.Status]++

		if rec.Analysis == nil {
			continue
		}

		result.Engines[rec.Analysis.Engine]++

		seen := map[string]bool{}

		for _, suggestion := range rec.Analysis.Suggestions {
			breakdown, ok := labels[suggestion.Label]
			if !ok {
				breakdown = &labelBreakdown{Label: suggestion.Label}
				labels[suggestion.Label] = breakdown
			}

			breakdown.Total++
			breakdown.Seconds += suggestion.EndTime - suggestion.StartTime
			breakdown.Confidence += suggestion.Confidence

			if !seen[suggestion.Label] {
				seen[suggestion.Label] = true
				breakdown.Files++
			}

			result.Confidences[confidenceBucket(suggestion.Confidence)]++
		}
	}

	result.Labels = make([]*labelBreakdown, 0, len(labels))
	for _, breakdown := range labels {
		result.Labels = append(result.Labels, breakdown)
	}

	slices.SortFunc(result.Labels, func(a, b *labelBreakdown) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}

		return strings.Compare(a.Label, b.Label)
	})

	return result
}

func printDigest(writer io.Writer, result *digest) {
	fmt.Fprintln(writer, "=== Spectag Report Digest ===")
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "Total files:      %d\n", result.Total)

	for _, status := range []string{
		spectag.StatusDone,
		spectag.StatusFallback,
		spectag.StatusAnalysisFailed,
		spectag.StatusSaveFailed,
	} {
		fmt.Fprintf(writer, "  %-16s %d\n", status+":", result.Statuses[status])
	}

	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "--- Engines ---")

	engines := make([]string, 0, len(result.Engines))
	for name := range result.Engines {
		engines = append(engines, name)
	}

	slices.Sort(engines)

	for _, name := range engines {
		fmt.Fprintf(writer, "  %s: %d files\n", name, result.Engines[name])
	}

	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "--- Confidence ---")
	fmt.Fprintf(writer, "  0-24:    %d\n", result.Confidences[0])
	fmt.Fprintf(writer, "  25-49:   %d\n", result.Confidences[1])
	fmt.Fprintf(writer, "  50-74:   %d\n", result.Confidences[2])
	fmt.Fprintf(writer, "  75-100:  %d\n", result.Confidences[3])
	fmt.Fprintln(writer)

	fmt.Fprintln(writer, "--- Suggestions By Label ---")

	for _, breakdown := range result.Labels {
		fmt.Fprintf(writer, "  %s\n", breakdown.Label)
		fmt.Fprintf(writer, "    total: %d  files: %d  seconds: %.0f  avg confidence: %d%%\n",
			breakdown.Total, breakdown.Files, breakdown.Seconds, breakdown.Confidence/breakdown.Total)
	}
}

func printLabelDetail(writer io.Writer, records []digestRecord, label string) {
	fmt.Fprintln(writer)

	count := 0

	for _, rec := range records {
		if rec.Analysis == nil {
			continue
		}

		file := rec.File
		if file == "" {
			file = "(redacted)"
		}

		for _, suggestion := range rec.Analysis.Suggestions {
			if suggestion.Label != label {
				continue
			}

			count++

			fmt.Fprintf(writer, "  %s\n", file)
			fmt.Fprintf(writer, "    %.1fs - %.1fs  confidence: %d%%\n",
				suggestion.StartTime, suggestion.EndTime, suggestion.Confidence)
		}
	}

	if count == 0 {
		fmt.Fprintf(writer, "No segments labeled %q\n", label)
	}
}
