//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/spectag"
)

func enginesCommand() *cli.Command {
	return &cli.Command{
		Name:  "engines",
		Usage: "List analysis engines and pipeline steps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			cfg := spectag.DefaultConfig()

			bands := make([]any, 0, len(cfg.Bands))
			for _, band := range cfg.Bands {
				bands = append(bands, map[string]any{
					"id":    band.ID,
					"label": band.Label,
					"role":  string(band.Role),
					"range": fmt.Sprintf("%d-%d Hz", band.Low(), band.High()),
				})
			}

			data := &format.Data{
				Object: "spectag",
				Meta: map[string]any{
					"engines": toAny(spectag.Engines()),
					"steps":   toAny(spectag.Steps()),
					"bands":   bands,
				},
			}

			return formatter.PrintAll([]*format.Data{data}, os.Stdout)
		},
	}
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}

	return out
}
