//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/spectag/internal/synth"
)

var errSynthArgs = errors.New("expected exactly two arguments: scenario and output path")

func synthCommand() *cli.Command {
	return &cli.Command{
		Name:      "synth",
		Usage:     "Write a synthetic test recording: " + strings.Join(synth.Scenarios(), ", "),
		ArgsUsage: "<scenario> <out.wav>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"s"},
				Usage:   "Sample rate in Hz",
				Value:   synth.DefaultSampleRate,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return fmt.Errorf("%w: got %d", errSynthArgs, cmd.NArg())
			}

			scenario, err := synth.Get(cmd.Args().Get(0))
			if err != nil {
				return err
			}

			sampleRate := cmd.Int("sample-rate")
			if sampleRate <= 0 {
				return fmt.Errorf("invalid sample rate: %d", sampleRate)
			}

			outPath := cmd.Args().Get(1)
			signal := scenario(sampleRate)

			if err = synth.WriteFile(outPath, signal); err != nil {
				return err
			}

			slog.Info("synth.Write", "scenario", cmd.Args().Get(0), "path", outPath, "seconds", signal.Duration())

			return nil
		},
	}
}
