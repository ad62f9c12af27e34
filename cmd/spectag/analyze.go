//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/spectag"
	"github.com/farcloser/spectag/internal/settings"
)

var errInvalidArgCount = errors.New("expected exactly one argument: file path")

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Detect anomaly candidates in an audio file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
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
				Usage:   "Analysis time budget before falling back (negative disables)",
				Value:   spectag.DefaultOptions().Timeout,
				Sources: cli.EnvVars(settings.EnvTimeout),
			},
			&cli.StringSliceFlag{
				Name:    "steps",
				Aliases: []string{"S"},
				Usage:   "Pipeline steps to run, in order (default: all)",
			},
			&cli.FloatFlag{
				Name:  "chunk-duration",
				Usage: "Chunk duration in seconds",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"D"},
				Usage:   "Include run details in output",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			override, err := buildOverride(cmd)
			if err != nil {
				return err
			}

			service, err := spectag.New(spectag.Options{
				Engine:  cmd.String("engine"),
				Timeout: cmd.Duration("timeout"),
			})
			if err != nil {
				return err
			}

			filePath := cmd.Args().First()

			result := service.Run(ctx, filePath, override)
			if errors.Is(result.Cause, spectag.ErrConfiguration) {
				return result.Cause
			}

			if err = outputResult(filePath, result, cmd.String("format"), cmd.Bool("debug")); err != nil {
				return err
			}

			if result.Status() == spectag.StatusAnalysisFailed {
				return result.Cause
			}

			return nil
		},
	}
}

// buildOverride collects the per-run configuration from the config file and flags.
// It returns nil when nothing overrides the defaults.
func buildOverride(cmd *cli.Command) (*spectag.Config, error) {
	var override *spectag.Config

	if path := cmd.String("config"); path != "" {
		cfg, err := spectag.LoadConfig(path)
		if err != nil {
			return nil, err
		}

		override = &cfg
	}

	if steps := cmd.StringSlice("steps"); len(steps) > 0 {
		if override == nil {
			override = &spectag.Config{}
		}

		override.Steps = steps
	}

	if cmd.IsSet("chunk-duration") {
		if override == nil {
			override = &spectag.Config{}
		}

		override.ChunkDurationSec = cmd.Float("chunk-duration")
	}

	return override, nil
}
