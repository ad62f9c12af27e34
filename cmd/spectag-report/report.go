//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/farcloser/spectag"
	"github.com/farcloser/spectag/internal/integration/ffprobe"
	"github.com/farcloser/spectag/internal/metrics"
	"github.com/farcloser/spectag/internal/output"
	"github.com/farcloser/spectag/internal/settings"
)

const outputFile = "spectag-report.jsonl"

var (
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no .wav, .m4a, .mp3 or .flac files found")
	errReportArgs   = errors.New("expected exactly one argument: folder path")
)

//nolint:gochecknoglobals // configuration data, effectively const
var audioExtensions = []string{".wav", ".m4a", ".mp3", ".flac"}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Scan a folder of recordings and write a spectag JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.StringFlag{
				Name:    "engine",
				Aliases: []string{"e"},
				Usage:   "Analysis engine: soundlab, rule-fallback",
				Value:   spectag.DefaultOptions().Engine,
				Sources: cli.EnvVars(settings.EnvEngine),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "JSON configuration file applied over the built-in defaults",
				Sources: cli.EnvVars(settings.EnvConfig),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Per-file analysis time budget before falling back",
				Value:   spectag.DefaultOptions().Timeout,
				Sources: cli.EnvVars(settings.EnvTimeout),
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
				Sources: cli.EnvVars(settings.EnvWorkers),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report path",
				Value:   outputFile,
			},
			&cli.StringFlag{
				Name:  "metrics-textfile",
				Usage: "Write Prometheus metrics to this file for the node exporter textfile collector",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errReportArgs
			}

			opts := reportOptions{
				folder:      cmd.Args().First(),
				output:      cmd.String("output"),
				redact:      cmd.Bool("redact-path"),
				workers:     max(cmd.Int("workers"), 1),
				metricsPath: cmd.String("metrics-textfile"),
				service: spectag.Options{
					Engine:  cmd.String("engine"),
					Timeout: cmd.Duration("timeout"),
				},
			}

			if path := cmd.String("config"); path != "" {
				cfg, err := spectag.LoadConfig(path)
				if err != nil {
					return err
				}

				opts.override = &cfg
			}

			return runReport(ctx, &opts)
		},
	}
}

type reportOptions struct {
	folder      string
	output      string
	redact      bool
	workers     int
	metricsPath string
	service     spectag.Options
	override    *spectag.Config
}

func runReport(ctx context.Context, opts *reportOptions) error {
	info, err := os.Stat(opts.folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", opts.folder, errNotDirectory)
	}

	files, err := collectAudioFiles(opts.folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", opts.folder, errNoAudioFiles)
	}

	recorder := metrics.New()
	opts.service.Metrics = recorder

	service, err := spectag.New(opts.service)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Found %d files to analyze (%d workers, engine %s)\n", len(files), opts.workers, service.Name())

	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.workers)

	for idx, filePath := range files {
		group.Go(func() error {
			results[idx] = processFile(groupCtx, service, filePath, opts.override)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s: %s\n", done, len(files), filePath, results[idx].Status)

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return err
	}

	saveFailed, err := writeRecords(opts.output, results, opts.redact)
	if err != nil {
		return err
	}

	if err = compressFile(opts.output); err != nil {
		slog.Error("compressing report", "error", err)
	}

	if opts.metricsPath != "" {
		if err = recorder.WriteTextfile(opts.metricsPath); err != nil {
			slog.Error("writing metrics", "path", opts.metricsPath, "error", err)
		}
	}

	elapsed := time.Since(startTime)
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %dm %ds (%d not saved)\n", len(files), minutes, seconds, saveFailed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", opts.output, opts.output)

	printTiming(os.Stderr, results, elapsed)

	fmt.Fprintln(os.Stderr)

	return runDigest(opts.output, "")
}

// writeRecords writes results to path in file order and returns how many were not saved.
// A failed close leaves every record unsaved.
func writeRecords(path string, results []Record, redact bool) (int, error) {
	out, err := os.Create(path) //nolint:gosec // CLI tool writes to a user-specified path
	if err != nil {
		return 0, fmt.Errorf("creating output file: %w", err)
	}

	saveFailed := writeLines(out, results, redact)

	if err = out.Close(); err != nil {
		slog.Error("closing report", "path", path, "error", err)

		return len(results), fmt.Errorf("closing output file: %w", err)
	}

	return saveFailed, nil
}

// writeLines writes one JSON line per record. A record whose line cannot be encoded or written
// is counted and replaced by a "save failed" line, when the writer still accepts one.
func writeLines(writer io.Writer, results []Record, redact bool) int {
	saveFailed := 0

	for idx := range results {
		record := &results[idx]

		if redact {
			record.File = ""
			record.Probe = redactProbe(record.Probe)
		}

		line, err := json.Marshal(record)
		if err == nil {
			_, err = writer.Write(append(line, '\n'))
		}

		if err == nil {
			continue
		}

		slog.Error("writing record", "file", record.File, "error", err)

		saveFailed++

		failed, marshalErr := json.Marshal(&Record{
			File:   record.File,
			RunID:  record.RunID,
			Status: spectag.StatusSaveFailed,
			Error:  err.Error(),
		})
		if marshalErr == nil {
			_, _ = writer.Write(append(failed, '\n'))
		}
	}

	return saveFailed
}

func processFile(ctx context.Context, service *spectag.Service, filePath string, override *spectag.Config) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	record := Record{File: filePath, Timing: timing}

	// Probe data is informational: the loader decodes WAV natively without it.
	probeStart := time.Now()

	probeResult, err := ffprobe.Probe(ctx, filePath)

	timing.ProbeMs = durationMs(time.Since(probeStart))

	if err != nil {
		record.ProbeError = err.Error()
	} else if probeJSON, marshalErr := json.Marshal(probeResult); marshalErr == nil {
		record.Probe = probeJSON
	} else {
		record.ProbeError = "probe serialization failed"
	}

	analyzeStart := time.Now()

	result := service.Run(ctx, filePath, override)

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	record.RunID = result.RunID
	record.Status = result.Status()
	record.Analysis = output.ResultToMap(result)

	if result.Cause != nil {
		record.Error = result.Cause.Error()
	}

	return record
}

func printTiming(writer io.Writer, results []Record, elapsed time.Duration) {
	var totalProbe, totalAnalyze time.Duration

	for idx := range results {
		if timing := results[idx].Timing; timing != nil {
			totalProbe += millisToDuration(timing.ProbeMs)
			totalAnalyze += millisToDuration(timing.AnalyzeMs)
		}
	}

	fmt.Fprintf(writer, "\n--- Timing ---\n")
	fmt.Fprintf(writer, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(writer, "  ffprobe:     %s (cumulative)\n", totalProbe.Truncate(time.Millisecond))
	fmt.Fprintf(writer, "  analysis:    %s (cumulative)\n", totalAnalyze.Truncate(time.Millisecond))

	if count := len(results); count > 0 {
		fmt.Fprintf(writer, "  avg/file:    %s (probe: %s, analyze: %s)\n",
			(totalProbe+totalAnalyze)/time.Duration(count),
			totalProbe/time.Duration(count),
			totalAnalyze/time.Duration(count),
		)
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	src, err := os.Open(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}
	defer src.Close()

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := io.Copy(gzWriter, src); err != nil {
		return err
	}

	if err := gzWriter.Close(); err != nil {
		return err
	}

	return gzFile.Close()
}

func redactProbe(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return raw
	}

	if format, ok := probe["format"].(map[string]any); ok {
		delete(format, "filename")
	}

	redacted, err := json.Marshal(probe)
	if err != nil {
		return raw
	}

	return redacted
}
